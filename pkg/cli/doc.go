/*
Package cli provides command-line helpers for the loupe binary.

Output Formatting:

Commands that print records build a Table and hand it to a formatter
chosen by the --output flag (text, json or csv):

	formatter := cli.NewFormatter(cli.FormatText)
	table := &cli.Table{Headers: []string{"ID"}, Rows: rows}
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

Errors and Exit Codes:

ConfigError marks configuration that failed to load or validate;
ExitCode maps it to exit status 2 and every other error to 1.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
