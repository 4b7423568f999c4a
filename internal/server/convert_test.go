package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/markbridge/internal/cache"
	mockcache "github.com/gerunddev/markbridge/internal/cache/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConvert(t *testing.T) {
	bbKey := cache.Key("bbcode", "markdown", []byte("[b]x[/b]"))

	testCases := []struct {
		name          string
		body          string
		buildStubs    func(c *mockcache.MockCache)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			body: `{"from":"bbcode","to":"markdown","text":"[b]x[/b]"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), bbKey).Times(1).Return(nil, cache.ErrMiss)
				c.EXPECT().Set(gomock.Any(), bbKey, gomock.Any(), time.Minute).Times(1).Return(nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireOutput(t, recorder, "**x**\n", false)
			},
		},
		{
			name: "AliasesShareCacheKey",
			body: `{"from":"bb","to":"md","text":"[b]x[/b]"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), bbKey).Times(1).Return(nil, cache.ErrMiss)
				c.EXPECT().Set(gomock.Any(), bbKey, gomock.Any(), gomock.Any()).Times(1).Return(nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name: "CacheHit",
			body: `{"from":"bbcode","to":"markdown","text":"[b]x[/b]"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), bbKey).Times(1).Return(&cache.Entry{Output: "cached"}, nil)
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireOutput(t, recorder, "cached", true)
			},
		},
		{
			name: "CacheGetErrorIsIgnored",
			body: `{"from":"bbcode","to":"markdown","text":"[b]x[/b]"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(nil, errors.New("connection refused"))
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireOutput(t, recorder, "**x**\n", false)
			},
		},
		{
			name: "CacheSetErrorIsIgnored",
			body: `{"from":"markdown","to":"html","text":"*x*"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(nil, cache.ErrMiss)
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(errors.New("connection refused"))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireOutput(t, recorder, "<p><em>x</em></p>\n", false)
			},
		},
		{
			name: "ParseError",
			body: `{"from":"bbcode","to":"markdown","text":"ok\n[b]x"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(nil, cache.ErrMiss)
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
				resp, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Equal(t, "unclosed tag", resp.Kind)
				require.Equal(t, 2, resp.Line)
				require.Equal(t, 2, resp.Column)
				require.Contains(t, resp.Error, "BBCode parse error")
			},
		},
		{
			name: "MissingFrom",
			body: `{"to":"markdown","text":"x"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				resp, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Equal(t, ErrInvalidParams.Error(), resp.Error)
				require.Len(t, resp.Fields, 1)
				require.Equal(t, "from", resp.Fields[0].Field)
				require.Equal(t, "is required", resp.Fields[0].Reason)
			},
		},
		{
			name: "UnknownFormat",
			body: `{"from":"bbcode","to":"org","text":"x"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				resp, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Equal(t, "to", resp.Fields[0].Field)
			},
		},
		{
			name: "HTMLIsNotASource",
			body: `{"from":"html","to":"markdown","text":"<b>x</b>"}`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MalformedJSON",
			body: `{"from":`,
			buildStubs: func(c *mockcache.MockCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				resp, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Len(t, resp.Fields, 1)
				require.Empty(t, resp.Fields[0].Field)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			c := mockcache.NewMockCache(ctrl)

			tc.buildStubs(c)

			service := newTestService(t, c)
			recorder := httptest.NewRecorder()

			request, err := http.NewRequest(http.MethodPost, ConvertURL, strings.NewReader(tc.body))
			require.NoError(t, err)
			request.Header.Set("Content-Type", "application/json")

			service.router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}

func requireOutput(t *testing.T, recorder *httptest.ResponseRecorder, output string, cached bool) {
	var resp ConvertResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Equal(t, output, resp.Output)
	require.Equal(t, cached, resp.Cached)
}

func TestPing(t *testing.T) {
	service := newTestService(t, nil)
	recorder := httptest.NewRecorder()

	request, err := http.NewRequest(http.MethodGet, PingURL, nil)
	require.NoError(t, err)

	service.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "pong", recorder.Body.String())
}

func TestFormats(t *testing.T) {
	service := newTestService(t, nil)
	recorder := httptest.NewRecorder()

	request, err := http.NewRequest(http.MethodGet, FormatsURL, nil)
	require.NoError(t, err)

	service.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Sources []string `json:"sources"`
		Targets []string `json:"targets"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Equal(t, []string{"markdown", "bbcode", "text"}, resp.Sources)
	require.Equal(t, []string{"markdown", "bbcode", "html", "text"}, resp.Targets)
}

func TestRequestID(t *testing.T) {
	service := newTestService(t, nil)

	t.Run("Generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request, err := http.NewRequest(http.MethodGet, PingURL, nil)
		require.NoError(t, err)

		service.router.ServeHTTP(recorder, request)
		require.Len(t, recorder.Header().Get(RequestIDHeader), 36)
	})

	t.Run("Propagated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request, err := http.NewRequest(http.MethodGet, PingURL, nil)
		require.NoError(t, err)
		request.Header.Set(RequestIDHeader, "abc-123")

		service.router.ServeHTTP(recorder, request)
		require.Equal(t, "abc-123", recorder.Header().Get(RequestIDHeader))
	})
}

func TestNopCacheConvert(t *testing.T) {
	service := newTestService(t, nil)
	body := bytes.NewBufferString(`{"from":"text","to":"bbcode","text":"plain"}`)

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodPost, ConvertURL, body)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")

	service.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	requireOutput(t, recorder, "plain\n", false)
}
