package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields map[string]string
	}{
		{
			name:  "valid",
			input: sample{Email: "a@b.com", Password: "123456"},
		},
		{
			name:   "empty",
			input:  sample{},
			fields: map[string]string{"email": "required", "password": "required"},
		},
		{
			name:   "malformed",
			input:  sample{Email: "nope", Password: "123", Avatar: "not a url"},
			fields: map[string]string{"email": "email", "password": "min", "avatar": "url"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Struct(tt.input)
			require.NoError(t, err)

			got := map[string]string{}
			for _, f := range fields {
				got[f.Field] = f.Rule
				assert.NotEmpty(t, f.Message)
			}
			if tt.fields == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

type trimmed struct {
	Username string `json:"username" validate:"required,min=3"`
}

func (t *trimmed) Normalize() {
	t.Username = strings.TrimSpace(t.Username)
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "valid", body: `{"username":"  alice "}`, want: "alice"},
		{name: "empty body", body: "", status: http.StatusUnprocessableEntity},
		{name: "empty object", body: `{}`, status: http.StatusUnprocessableEntity},
		{name: "short after trim", body: `{"username":"  ab "}`, status: http.StatusUnprocessableEntity},
		{name: "malformed json", body: `{"username":`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst trimmed
			apiErr := DecodeAndValidate(req, &dst)
			if tt.status == 0 {
				require.Nil(t, apiErr)
				assert.Equal(t, tt.want, dst.Username)
				return
			}
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}
