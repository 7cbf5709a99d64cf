package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

func TestValidateContent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "Hello", want: "Hello"},
		{name: "trimmed", input: "  Hello there \n", want: "Hello there"},
		{name: "single char", input: "x", want: "x"},
		{name: "max length", input: strings.Repeat("a", MaxContentLength), want: strings.Repeat("a", MaxContentLength)},
		{name: "max length multibyte", input: strings.Repeat("é", MaxContentLength), want: strings.Repeat("é", MaxContentLength)},
		{name: "max length after trim", input: "  " + strings.Repeat("a", MaxContentLength) + "  ", want: strings.Repeat("a", MaxContentLength)},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: " \t\n ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxContentLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateContent(ctx, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
				assert.Equal(t, FieldContent, platformerrors.GetPlatformError(err).Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty allowed", input: "", want: ""},
		{name: "v4", input: "3f2504e0-4f89-41d3-9a0c-0305e82c3301", want: "3f2504e0-4f89-41d3-9a0c-0305e82c3301"},
		{name: "uppercase normalized", input: "3F2504E0-4F89-41D3-9A0C-0305E82C3301", want: "3f2504e0-4f89-41d3-9a0c-0305e82c3301"},
		{name: "surrounding spaces", input: " 3f2504e0-4f89-41d3-9a0c-0305e82c3301 ", want: "3f2504e0-4f89-41d3-9a0c-0305e82c3301"},
		{name: "not uuid", input: "conv_123", wantErr: true},
		{name: "bad version", input: "3f2504e0-4f89-01d3-9a0c-0305e82c3301", wantErr: true},
		{name: "bad variant", input: "3f2504e0-4f89-41d3-0a0c-0305e82c3301", wantErr: true},
		{name: "braced", input: "{3f2504e0-4f89-41d3-9a0c-0305e82c3301}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateID(ctx, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, FieldConversationID, platformerrors.GetPlatformError(err).Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
