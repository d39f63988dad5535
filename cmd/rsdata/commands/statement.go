package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func Status() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "report the status of an execution",
		Action:    runStatus,
		ArgsUsage: "<execution id>",
		Flags:     connectionFlags(),
	}
}

func runStatus(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("need exactly one execution id")
	}

	conn, err := connect(c)
	if err != nil {
		return err
	}

	status, err := conn.Client().Describe(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("id:     %s\n", status.ID)
	fmt.Printf("status: %s\n", status.Status)
	fmt.Printf("rows:   %d\n", status.RowCount)
	if status.Error != "" {
		fmt.Printf("error:  %s\n", status.Error)
	}
	if len(status.SubStatementIDs) > 0 {
		fmt.Printf("sub-statements: %s\n", strings.Join(status.SubStatementIDs, ", "))
	}
	return nil
}

func Cancel() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "cancel a running execution",
		Action:    runCancel,
		ArgsUsage: "<execution id>",
		Flags:     connectionFlags(),
	}
}

func runCancel(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("need exactly one execution id")
	}

	conn, err := connect(c)
	if err != nil {
		return err
	}

	if err := conn.Client().Cancel(c.Context, c.Args().First()); err != nil {
		return err
	}
	fmt.Println("canceled")
	return nil
}
