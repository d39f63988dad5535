package commands

import (
	"fmt"
	"strings"

	"github.com/alexeyco/simpletable"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/rudder-go-kit/jsonrs"

	"github.com/rudderlabs/redshift-data-go/dataapi"
)

func Query() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "execute a statement and print its results",
		Action:    runQuery,
		ArgsUsage: "<sql>",
		Flags: append(connectionFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print rows as JSON objects instead of a table",
			},
		),
	}
}

func runQuery(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("need a statement to execute")
	}
	sql := strings.Join(c.Args().Slice(), " ")

	conn, err := connect(c)
	if err != nil {
		return err
	}

	cursor, err := conn.Cursor().Execute(c.Context, sql)
	if err != nil {
		return err
	}

	desc, err := cursor.Description(c.Context)
	if err != nil {
		return err
	}
	rows, err := cursor.FetchAll(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(desc, rows)
	}
	printTable(desc, rows)
	return nil
}

func printJSON(desc []dataapi.ColumnDescription, rows []dataapi.Row) error {
	for _, row := range rows {
		object := make(map[string]any, len(desc))
		for i, col := range desc {
			object[col.Name] = row[i]
		}
		out, err := jsonrs.Marshal(object)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}

func printTable(desc []dataapi.ColumnDescription, rows []dataapi.Row) {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: lo.Map(desc, func(col dataapi.ColumnDescription, _ int) *simpletable.Cell {
			return &simpletable.Cell{Align: simpletable.AlignCenter, Text: col.Name}
		}),
	}
	for _, row := range rows {
		table.Body.Cells = append(table.Body.Cells, lo.Map(row, func(cell any, _ int) *simpletable.Cell {
			return &simpletable.Cell{Text: cellText(cell)}
		}))
	}
	fmt.Println(table.String())
	fmt.Printf("(%d rows)\n", len(rows))
}

func cellText(cell any) string {
	if cell == nil {
		return "NULL"
	}
	if b, ok := cell.([]byte); ok {
		return fmt.Sprintf("%x", b)
	}
	return fmt.Sprintf("%v", cell)
}
