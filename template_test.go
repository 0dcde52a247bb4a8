package pipetheory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputTemplate_KeyOnlyOperations(t *testing.T) {
	for _, op := range []OperationType{OperationInsert, OperationRemove} {
		t.Run(string(op), func(t *testing.T) {
			template, err := InputTemplate(op, "PK")
			require.NoError(t, err)
			require.Equal(t, `{"userId": <$.dynamodb.Keys.PK.S>}`, template)
			require.NotContains(t, template, "OldImage")
			require.NotContains(t, template, "NewImage")
		})
	}
}

func TestInputTemplate_ModifyReferencesBothImages(t *testing.T) {
	template, err := InputTemplate(OperationModify, "PK")
	require.NoError(t, err)
	require.Equal(t,
		`{"userId": <$.dynamodb.Keys.PK.S>, "oldImage": <$.dynamodb.OldImage>, "newImage": <$.dynamodb.NewImage>}`,
		template)
}

func TestInputTemplate_InvalidOperation(t *testing.T) {
	_, err := InputTemplate(OperationType("UPSERT"), "PK")
	require.True(t, IsInvalidOperationError(err))
}

func TestValidateTemplateShape(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"no placeholders", `{"static": true}`, false},
		{"single placeholder", `{"userId": <$.dynamodb.Keys.PK.S>}`, false},
		{"multiple placeholders", `{"a": <$.x>, "b": <$.y>}`, false},
		{"unclosed placeholder", `{"userId": <$.dynamodb.Keys.PK.S}`, true},
		{"unmatched close", `{"userId": $.x>}`, true},
		{"missing path prefix", `{"userId": <user.id>}`, true},
		{"nested open", `{"userId": <$.a<$.b>>}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateTemplateShape(tc.template)
			if tc.wantErr {
				require.Error(t, err)
				require.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBuiltTemplatesPassShapeValidation(t *testing.T) {
	for _, op := range OperationTypes() {
		template, err := InputTemplate(op, "PK")
		require.NoError(t, err)
		require.NoError(t, validateTemplateShape(template))
	}
}
