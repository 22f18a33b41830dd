package models

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

const (
	StatusProcessed   = "processed"
	StatusUnsupported = "unsupported format"
	StatusError       = "error"
)

var (
	RAGPromptTemplate = `Use the following context to answer the question.

Context:
%s

Question: %s`
)
