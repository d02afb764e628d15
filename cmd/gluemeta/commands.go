package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arkilian/glue-metastore/pkg/types"
)

func newDatabasesCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List all databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := cc.metastore.GetAllDatabases(cmd.Context())
			if err != nil {
				return err
			}
			return printNames(cc, "DATABASE", names)
		},
	}
}

func newTablesCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <database>",
		Short: "List the tables of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := cc.metastore.GetAllTables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNames(cc, "TABLE", names)
		},
	}
}

func newTableCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "table <database> <table>",
		Short: "Describe a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, ok, err := cc.metastore.GetTable(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("table %s.%s not found", args[0], args[1])
			}
			if cc.output == "json" {
				return printJSON(cc.out, table)
			}
			return describeTable(cc, table)
		},
	}
}

func newPartitionsCmd(cc *cliContext) *cobra.Command {
	var parts []string
	cmd := &cobra.Command{
		Use:   "partitions <database> <table>",
		Short: "List the partition names of a table",
		Long: "List the partition names of a table. --part values filter partition\n" +
			"keys by position; an empty value matches any value.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			var err error
			if cmd.Flags().Changed("part") {
				names, err = cc.metastore.GetPartitionNamesByParts(cmd.Context(), args[0], args[1], parts)
			} else {
				names, err = cc.metastore.GetPartitionNames(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			return printNames(cc, "PARTITION", names)
		},
	}
	cmd.Flags().StringArrayVar(&parts, "part", nil, "Partition value filter, one per key in order (repeatable)")
	return cmd
}

func printNames(cc *cliContext, header string, names []string) error {
	if cc.output == "json" {
		return printJSON(cc.out, names)
	}
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}
	return printTable(cc.out, []string{header}, rows)
}

func describeTable(cc *cliContext, table types.Table) error {
	fmt.Fprintf(cc.out, "Table:    %s.%s\n", table.DatabaseName, table.TableName)
	fmt.Fprintf(cc.out, "Type:     %s\n", table.TableType)
	fmt.Fprintf(cc.out, "Owner:    %s\n", table.Owner)
	fmt.Fprintf(cc.out, "Location: %s\n", table.Storage.Location)
	if table.IsView() && table.ViewOriginalText != nil {
		fmt.Fprintf(cc.out, "View:     %s\n", *table.ViewOriginalText)
	}
	fmt.Fprintln(cc.out)

	rows := make([][]string, 0, len(table.DataColumns)+len(table.PartitionColumns))
	for _, c := range table.DataColumns {
		rows = append(rows, []string{c.Name, string(c.Type), "", comment(c)})
	}
	for _, c := range table.PartitionColumns {
		rows = append(rows, []string{c.Name, string(c.Type), "partition", comment(c)})
	}
	if err := printTable(cc.out, []string{"COLUMN", "TYPE", "KIND", "COMMENT"}, rows); err != nil {
		return err
	}

	if len(table.Parameters) > 0 {
		fmt.Fprintln(cc.out)
		keys := make([]string, 0, len(table.Parameters))
		for k := range table.Parameters {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		params := make([][]string, len(keys))
		for i, k := range keys {
			params[i] = []string{k, table.Parameters[k]}
		}
		return printTable(cc.out, []string{"PARAMETER", "VALUE"}, params)
	}
	return nil
}

func comment(c types.Column) string {
	if c.Comment == nil {
		return ""
	}
	return strings.ReplaceAll(*c.Comment, "\n", " ")
}
