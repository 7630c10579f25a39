package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger             string                            `json:"swagger"`
		Paths               map[string]map[string]interface{} `json:"paths"`
		Definitions         map[string]interface{}            `json:"definitions"`
		SecurityDefinitions map[string]interface{}            `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.SecurityDefinitions, "BearerAuth")
	assert.Contains(t, doc.Definitions, "models.InvitationView")
	assert.Contains(t, doc.Definitions, "services.CategoryInput")
	for path, ops := range doc.Paths {
		assert.NotEmpty(t, ops, path)
	}
}
