package server

import (
	"bytes"
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/markbridge/internal/cache"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Configure the validator to use json tags for field names in errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}

	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testConfig = Config{
	Address:  "127.0.0.1:0",
	CacheTTL: time.Minute,
}

func newTestService(t *testing.T, c cache.Cache) *Service {
	service, err := NewService(testConfig, convert.NewConverter(convert.Options{}, nil), c, nil)
	require.NoError(t, err)
	return service
}

func extractErrorFromBuffer(buf *bytes.Buffer) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.NewDecoder(buf).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
