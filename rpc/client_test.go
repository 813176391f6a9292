package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, handler func(method string, params []any) (any, *Error)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string `json:"jsonrpc"`
			Method  string `json:"method"`
			Params  []any  `json:"params"`
			ID      uint64 `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2.0", req.JSONRPC)
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestGetBlockCount(t *testing.T) {
	srv := rpcServer(t, func(method string, params []any) (any, *Error) {
		require.Equal(t, "getblockcount", method)
		require.Empty(t, params)
		return 12345, nil
	})
	defer srv.Close()

	client := New()
	count, latency, err := client.GetBlockCount(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, uint32(12345), count)
	require.Greater(t, latency, time.Duration(0))
}

func TestGetVersion(t *testing.T) {
	srv := rpcServer(t, func(method string, params []any) (any, *Error) {
		require.Equal(t, "getversion", method)
		return map[string]any{"useragent": "/Neo:3.6.0/"}, nil
	})
	defer srv.Close()

	client := New()
	agent, err := client.GetVersion(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "/Neo:3.6.0/", agent)
}

func TestGetBlock(t *testing.T) {
	payload := []byte("raw block bytes")
	srv := rpcServer(t, func(method string, params []any) (any, *Error) {
		require.Equal(t, "getblock", method)
		require.Len(t, params, 2)
		require.EqualValues(t, 42, params[0])
		require.EqualValues(t, 0, params[1])
		return base64.StdEncoding.EncodeToString(payload), nil
	})
	defer srv.Close()

	client := New()
	data, err := client.GetBlock(context.Background(), srv.URL, 42)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestRPCError(t *testing.T) {
	srv := rpcServer(t, func(string, []any) (any, *Error) {
		return nil, &Error{Code: -100, Message: "unknown block"}
	})
	defer srv.Close()

	client := New()
	_, err := client.GetBlock(context.Background(), srv.URL, 42)
	require.Error(t, err)
	rpcErr := &Error{}
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, -100, rpcErr.Code)
}

func TestMalformedPayload(t *testing.T) {
	srv := rpcServer(t, func(string, []any) (any, *Error) {
		return "not valid base64 !!!", nil
	})
	defer srv.Close()

	client := New()
	_, err := client.GetBlock(context.Background(), srv.URL, 42)
	require.ErrorContains(t, err, "malformed payload")
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := client.GetBlockCount(ctx, srv.URL)
	require.Error(t, err)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintln(w, "bad gateway")
	}))
	defer srv.Close()

	client := New()
	_, err := client.GetVersion(context.Background(), srv.URL)
	require.Error(t, err)
}
