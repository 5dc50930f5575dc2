/*
Package cli provides helpers shared by the playground command.

Output Formatting:

Commands print either a text table or indented JSON:

	formatter, err := cli.NewFormatter(cli.FormatText)
	if err != nil {
		return err
	}
	table := cli.Table{Headers: []string{"PROVIDER", "CONFIGURED"}}
	table.Append("openai", "yes")
	return formatter.FormatTo(cmd.OutOrStdout(), table)

The JSON formatter encodes the value it is given; pass the structured
result rather than a Table when JSON output should keep field names.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()
*/
package cli
