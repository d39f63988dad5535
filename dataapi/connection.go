package dataapi

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"

	awsutil "github.com/rudderlabs/rudder-go-kit/awsutil_v2"
	"github.com/rudderlabs/rudder-go-kit/config"
)

// Credentials configure how the AWS client authenticates. Zero value means the SDK
// default credential chain (environment, shared config, instance profile).
type Credentials struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	IAMRoleARN      string
	ExternalID      string
	RoleBasedAuth   bool
}

// Connection is the stateless "connection" to the Redshift Data API: it holds one
// configured Client and hands out independent cursors. Many cursors may share it,
// the underlying connection parameters are immutable.
type Connection struct {
	client *Client
}

// Connect builds the AWS client from the given credentials and wraps it in a
// Connection for the target database.
func Connect(ctx context.Context, conf *config.Config, database string, params ConnectionParams, creds Credentials, opts ...Option) (*Connection, error) {
	awsConfig, err := resolveAWSConfig(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("creating AWS config: %w", err)
	}
	client := New(conf, redshiftdata.NewFromConfig(awsConfig), database, params, opts...)
	return &Connection{client: client}, nil
}

func resolveAWSConfig(ctx context.Context, creds Credentials) (aws.Config, error) {
	if creds.AccessKeyID == "" && creds.IAMRoleARN == "" {
		var optFns []func(*awsconfig.LoadOptions) error
		if creds.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(creds.Region))
		}
		return awsconfig.LoadDefaultConfig(ctx, optFns...)
	}
	return awsutil.CreateAWSConfig(ctx, &awsutil.SessionConfig{
		Region:        creds.Region,
		AccessKeyID:   creds.AccessKeyID,
		AccessKey:     creds.SecretAccessKey,
		SessionToken:  creds.SessionToken,
		IAMRoleARN:    creds.IAMRoleARN,
		ExternalID:    creds.ExternalID,
		RoleBasedAuth: creds.RoleBasedAuth,
		Service:       "redshift-data",
	})
}

// NewConnection wraps an already constructed Client, useful when the caller manages
// the AWS client itself.
func NewConnection(client *Client) *Connection {
	return &Connection{client: client}
}

// Cursor returns a new independent cursor.
func (c *Connection) Cursor() *Cursor {
	return NewCursor(c.client)
}

// Client exposes the underlying execution client.
func (c *Connection) Client() *Client {
	return c.client
}
