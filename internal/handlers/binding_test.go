package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Nombre string `json:"nombre" binding:"required"`
	Edad   int    `json:"edad"`
	Ciudad string `json:"ciudad"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		initial     bindTarget
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "nested record",
			key:      "inquilino",
			body:     `{"inquilino": {"nombre": "Ana", "edad": 30}}`,
			expected: bindTarget{Nombre: "Ana", Edad: 30},
		},
		{
			name:     "flat record",
			key:      "inquilino",
			body:     `{"nombre": "Luis", "edad": 25}`,
			expected: bindTarget{Nombre: "Luis", Edad: 25},
		},
		{
			name:     "other keys fall back to flat",
			key:      "inquilino",
			body:     `{"otro": "valor", "nombre": "Carla", "edad": 40}`,
			expected: bindTarget{Nombre: "Carla", Edad: 40},
		},
		{
			name:     "key holding a scalar is a flat field",
			key:      "ciudad",
			body:     `{"nombre": "Rosa", "ciudad": "Quito"}`,
			expected: bindTarget{Nombre: "Rosa", Ciudad: "Quito"},
		},
		{
			name:     "partial body merges onto existing values",
			key:      "inquilino",
			initial:  bindTarget{Nombre: "Pedro", Edad: 50, Ciudad: "Lima"},
			body:     `{"edad": 51}`,
			expected: bindTarget{Nombre: "Pedro", Edad: 51, Ciudad: "Lima"},
		},
		{
			name:        "wrong type",
			key:         "inquilino",
			body:        `{"nombre": "Eva", "edad": "treinta"}`,
			expectError: true,
		},
		{
			name:        "nested wrong type",
			key:         "inquilino",
			body:        `{"inquilino": {"nombre": "Eva", "edad": "treinta"}}`,
			expectError: true,
		},
		{
			name:        "required field missing",
			key:         "inquilino",
			body:        `{"edad": 20}`,
			expectError: true,
		},
		{
			name:        "empty body",
			key:         "inquilino",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			result := tt.initial
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
