package transcript

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/legalaid/internal/models"
)

func sampleInteractions() []models.Interaction {
	return []models.Interaction{
		{UserQuery: "What is IPC?", AssistantResponse: "The Indian Penal Code, in short", Source: models.SourceKeyword},
		{UserQuery: "hi", AssistantResponse: "Sorry, I couldn't find a matching response for your query.", Source: models.SourceNone},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleInteractions()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_query", "assistant_response"}, records[0])
	assert.Equal(t, []string{"What is IPC?", "The Indian Penal Code, in short"}, records[1])
	assert.Equal(t, "hi", records[2][0])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "user_query,assistant_response\n", buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sampleInteractions())

	out := buf.String()
	assert.Contains(t, out, "What is IPC?")
	assert.Contains(t, out, "keyword")
}
