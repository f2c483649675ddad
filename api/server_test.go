package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/opcode"
	"github.com/cpunch-go/luadecompy/internal/undump"
)

func sampleChunk(t *testing.T) []byte {
	t.Helper()
	proto := &bytecode.Prototype{
		Source:    "test.lua",
		FirstLine: 1,
		LastLine:  1,
		Constants: []bytecode.Constant{bytecode.NumberConstant(42)},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpReturn, A: 0, B: 2},
		},
	}
	data, err := undump.NewEncoder(undump.DefaultHeader()).Encode(proto)
	require.NoError(t, err, "Encode")
	return data
}

func TestHealthCheck(t *testing.T) {
	server := NewServer(8080)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "expected status 200")

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response), "decode response")
	assert.Equal(t, "ok", response["status"])
}

func TestCreateSessionAndFetchPrototypes(t *testing.T) {
	server := NewServer(8080)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(sampleChunk(t)))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, "create session: %s", w.Body.String())

	var created SessionCreateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created), "decode create response")
	assert.NotEmpty(t, created.SessionID, "expected non-empty session ID")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session/"+created.SessionID+"/prototypes", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "prototypes: %s", w.Body.String())

	var protos PrototypesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&protos), "decode prototypes response")
	require.Len(t, protos.Prototypes, 1)
	assert.Equal(t, 2, protos.Prototypes[0].InstructionCount)
}

func TestDisasmAndDecompileEndpoints(t *testing.T) {
	server := NewServer(8080)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(sampleChunk(t))))
	var created SessionCreateResponse
	json.NewDecoder(w.Body).Decode(&created) //nolint:errcheck

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session/"+created.SessionID+"/disasm", nil))
	require.Equal(t, http.StatusOK, w.Code, "disasm: %s", w.Body.String())
	var disasmResp DisasmResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&disasmResp), "decode disasm response")
	assert.Len(t, disasmResp.Lines, 2)

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session/"+created.SessionID+"/decompile", nil))
	assert.Equal(t, http.StatusOK, w.Code, "decompile: %s", w.Body.String())
}

func TestDestroySession(t *testing.T) {
	server := NewServer(8080)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(sampleChunk(t))))
	var created SessionCreateResponse
	json.NewDecoder(w.Body).Decode(&created) //nolint:errcheck

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/session/"+created.SessionID, nil))
	require.Equal(t, http.StatusOK, w.Code, "destroy")

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session/"+created.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "expected 404 for destroyed session")
}

func TestUnknownSessionReturns404(t *testing.T) {
	server := NewServer(8080)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session/does-not-exist/prototypes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
