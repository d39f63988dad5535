package dataapi

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
)

// ConnectionParams identifies the Redshift target of an execution. The fields are
// mutually exclusive with override: when both SecretARN and DBUser are set,
// secret-based auth wins and DBUser is dropped; when both Workgroup and
// ClusterIdentifier are set, the serverless workgroup wins and ClusterIdentifier is
// dropped. Resolution happens once, at Client construction.
type ConnectionParams struct {
	Workgroup         string
	SecretARN         string
	DBUser            string
	ClusterIdentifier string
}

// resolve applies the precedence rules and returns the parameters that will actually
// be transmitted.
func (p ConnectionParams) resolve() ConnectionParams {
	if p.SecretARN != "" && p.DBUser != "" {
		p.DBUser = ""
	}
	if p.Workgroup != "" && p.ClusterIdentifier != "" {
		p.ClusterIdentifier = ""
	}
	return p
}

// apply copies the non-empty fields into a submission input.
func (p ConnectionParams) apply(in *redshiftdata.BatchExecuteStatementInput) {
	if p.Workgroup != "" {
		in.WorkgroupName = aws.String(p.Workgroup)
	}
	if p.SecretARN != "" {
		in.SecretArn = aws.String(p.SecretARN)
	}
	if p.DBUser != "" {
		in.DbUser = aws.String(p.DBUser)
	}
	if p.ClusterIdentifier != "" {
		in.ClusterIdentifier = aws.String(p.ClusterIdentifier)
	}
}
