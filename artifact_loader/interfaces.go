package artifact_loader

// Loader turns a fetched object into text, performing any necessary decompression
type Loader interface {
	Identifier() string
	Load([]byte) (string, error)
}
