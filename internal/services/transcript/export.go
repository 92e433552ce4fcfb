// Package transcript serialises a session's interaction log for download and terminal display.
package transcript

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/ternarybob/legalaid/internal/models"
)

// CSVFileName is the download name of the interaction log
const CSVFileName = "interaction_history.csv"

var csvHeader = []string{"user_query", "assistant_response"}

// WriteCSV writes the interaction log as two-column CSV with a header row
func WriteCSV(w io.Writer, interactions []models.Interaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, interaction := range interactions {
		if err := writer.Write([]string{interaction.UserQuery, interaction.AssistantResponse}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// RenderTable prints the interaction log as a text table
func RenderTable(w io.Writer, interactions []models.Interaction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Query", "Response", "Source"})
	table.SetAutoWrapText(true)
	table.SetColWidth(60)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)

	for i, interaction := range interactions {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			interaction.UserQuery,
			interaction.AssistantResponse,
			string(interaction.Source),
		})
	}
	table.Render()
}
