package rpc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RequestResponseRoundTrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	serverCodec := NewCodec(serverConn)
	clientCodec := NewCodec(clientConn)

	want := SuggestionRequest{UserInput: "git", WorkingDir: "/tmp", MaxSuggestions: 5}
	req, err := NewRequest("req-1", MethodGetSuggestions, want)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := serverCodec.ReadRequest()
		require.NoError(t, err)
		assert.Equal(t, MethodGetSuggestions, got.Method)

		var params SuggestionRequest
		require.NoError(t, got.Unmarshal(&params))
		assert.Equal(t, want, params)

		resp, err := NewResultResponse(got.ID, SuggestionResponse{
			Suggestions: []string{"git status"},
			Source:      SourceCache,
			Confidence:  1,
		})
		require.NoError(t, err)
		require.NoError(t, serverCodec.WriteResponse(resp))
	}()

	require.NoError(t, clientCodec.WriteRequest(req))

	resp, err := clientCodec.ReadResponse()
	require.NoError(t, err)

	var out SuggestionResponse
	require.NoError(t, resp.Unmarshal(&out))
	assert.Equal(t, []string{"git status"}, out.Suggestions)
	assert.Equal(t, SourceCache, out.Source)

	<-done
}

func TestCodec_PeerDisconnectSurfacesAsReadError(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	clientCodec := NewCodec(clientConn)

	require.NoError(t, serverConn.Close())

	_, err := clientCodec.ReadRequest()
	assert.Error(t, err)
}

func TestCodec_ReadTimeoutSurfacesAsTimeout(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(5*time.Millisecond)))
	codec := NewCodec(clientConn)

	_, err := codec.ReadRequest()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}
