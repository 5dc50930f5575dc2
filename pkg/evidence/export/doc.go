// Package export writes relay evidence records as JSON or CSV.
//
// The CLI uses it to print query results, and the retention pruner uses
// the JSON exporter to archive records before deleting them.
//
//	exp, err := export.New(export.FormatCSV)
//	if err != nil {
//	    return err
//	}
//	return exp.Export(ctx, records, os.Stdout)
package export
