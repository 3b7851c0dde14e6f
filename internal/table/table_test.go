package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rows := []Row{
		{"entity_id": "e_aaa", "namespace": "medical", "label": "tourniquet", "entity_type": "concept"},
		{"entity_id": "e_bbb", "namespace": "medical", "label": "severe_bleeding", "entity_type": "concept"},
	}
	SortRows(rows, "entity_id")

	encoded, err := Encode(EntitiesSchema, rows)
	require.NoError(t, err)

	_, decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "e_aaa", decoded[0]["entity_id"])
}

func TestEncodeIsDeterministic(t *testing.T) {
	rows := []Row{
		{"entity_id": "e_aaa", "namespace": "medical", "label": "tourniquet", "entity_type": "concept"},
	}
	a, err := Encode(EntitiesSchema, rows)
	require.NoError(t, err)
	b, err := Encode(EntitiesSchema, rows)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidateRowsRejectsMissingColumn(t *testing.T) {
	rows := []Row{
		{"entity_id": "e_aaa", "namespace": "medical", "label": "tourniquet"},
	}
	findings := ValidateRows(context.Background(), "entities", "graph/entities.axc", rows)
	require.NotEmpty(t, findings)
}

func TestValidateRowsAcceptsWellFormedRow(t *testing.T) {
	rows := []Row{
		{"entity_id": "e_aaa", "namespace": "medical", "label": "tourniquet", "entity_type": "concept"},
	}
	findings := ValidateRows(context.Background(), "entities", "graph/entities.axc", rows)
	assert.Empty(t, findings)
}
