package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/rudder-go-kit/config"

	"github.com/rudderlabs/redshift-data-go/dataapi"
)

var DefaultList []*cli.Command

func init() {
	DefaultList = append(DefaultList, Query(), Exec(), Status(), Cancel())
}

func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "database",
			Usage: "target database",
			Value: config.GetString("RSDATA_DATABASE", ""),
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "AWS region",
			Value: config.GetString("AWS_REGION", ""),
		},
		&cli.StringFlag{
			Name:  "workgroup",
			Usage: "serverless workgroup name",
			Value: config.GetString("RSDATA_WORKGROUP", ""),
		},
		&cli.StringFlag{
			Name:  "cluster-identifier",
			Usage: "provisioned cluster identifier",
			Value: config.GetString("RSDATA_CLUSTER_IDENTIFIER", ""),
		},
		&cli.StringFlag{
			Name:  "secret-arn",
			Usage: "secrets manager ARN holding the credentials",
			Value: config.GetString("RSDATA_SECRET_ARN", ""),
		},
		&cli.StringFlag{
			Name:  "db-user",
			Usage: "database user for temporary credentials",
			Value: config.GetString("RSDATA_DB_USER", ""),
		},
		&cli.StringFlag{
			Name:  "iam-role-arn",
			Usage: "IAM role to assume",
			Value: config.GetString("RSDATA_IAM_ROLE_ARN", ""),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "execution timeout",
			Value: config.GetDuration("RSDATA_TIMEOUT", 120, time.Second),
		},
	}
}

func connect(c *cli.Context) (*dataapi.Connection, error) {
	database := c.String("database")
	if database == "" {
		return nil, fmt.Errorf("need a database: pass --database or set RSDATA_DATABASE")
	}

	params := dataapi.ConnectionParams{
		Workgroup:         c.String("workgroup"),
		SecretARN:         c.String("secret-arn"),
		DBUser:            c.String("db-user"),
		ClusterIdentifier: c.String("cluster-identifier"),
	}
	creds := dataapi.Credentials{
		Region:          c.String("region"),
		AccessKeyID:     config.GetString("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: config.GetString("AWS_SECRET_ACCESS_KEY", ""),
		SessionToken:    config.GetString("AWS_SESSION_TOKEN", ""),
		IAMRoleARN:      c.String("iam-role-arn"),
	}

	return dataapi.Connect(c.Context, config.Default, database, params, creds,
		dataapi.WithExecuteTimeout(c.Duration("timeout")))
}
