package server

import (
	"vclcore/internal/document"
	"vclcore/internal/handler"
	"vclcore/internal/obslog"

	protocol "github.com/tliron/glsp/protocol_3_16"
	glspServer "github.com/tliron/glsp/server"
)

// Run wires up the LSP handler and starts the server on stdio.
func Run(logLevel string) error {
	obslog.Configure(logLevel)

	store := document.New()
	h := handler.New(store)

	lspHandler := protocol.Handler{
		Initialize:             h.Initialize,
		Initialized:            h.Initialized,
		Shutdown:               h.Shutdown,
		SetTrace:               h.SetTrace,
		TextDocumentDidOpen:    h.DidOpen,
		TextDocumentDidChange:  h.DidChange,
		TextDocumentDidSave:    h.DidSave,
		TextDocumentDidClose:   h.DidClose,
		TextDocumentCompletion: h.Completion,
		TextDocumentHover:      h.Hover,
	}

	s := glspServer.NewServer(&lspHandler, "vcl-ls", false)
	return s.RunStdio()
}
