package artifact_loader

const (
	GzipLoaderIdentifier = "gzip"
)
