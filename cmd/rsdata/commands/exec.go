package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexeyco/simpletable"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/redshift-data-go/dataapi"
)

func Exec() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "execute every statement of a SQL file, batched",
		Action:    runExec,
		ArgsUsage: "<file.sql>",
		Flags:     connectionFlags(),
	}
}

func runExec(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("need exactly one SQL file")
	}
	contents, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	sqls := splitStatements(string(contents))
	if len(sqls) == 0 {
		return fmt.Errorf("no statements in %s", c.Args().First())
	}

	conn, err := connect(c)
	if err != nil {
		return err
	}
	client := conn.Client()

	ids, err := client.ExecuteBatched(c.Context, sqls, dataapi.ExecuteOptions{
		StatementName: fmt.Sprintf("rsdata-%s", uuid.New().String()),
	})
	if err != nil {
		return err
	}

	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Execution ID"},
			{Align: simpletable.AlignCenter, Text: "Rows"},
		},
	}
	for _, id := range ids {
		count, err := client.RowCount(c.Context, id)
		if err != nil {
			return err
		}
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Text: id},
			{Text: fmt.Sprintf("%d", count)},
		})
	}
	fmt.Println(table.String())
	return nil
}

// splitStatements splits a script on semicolons, dropping empty statements.
func splitStatements(script string) []string {
	var sqls []string
	for _, sql := range strings.Split(script, ";") {
		if sql = strings.TrimSpace(sql); sql != "" {
			sqls = append(sqls, sql)
		}
	}
	return sqls
}
