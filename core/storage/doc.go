// Package storage connects to the S3 compatible bucket holding published mod archives.
//
// Client is a narrow interface over minio-go so feature/mods can list, download, upload and
// remove archives without depending on the concrete SDK type; core/storage/mocks has a
// testify mock of it. NewClient accepts endpoints with or without a scheme and applies the
// configured timeout to dialing, TLS and the first response byte.
//
//	client, err := storage.NewClient(cfg.Storage)
//	objects := client.ListObjects(ctx, cfg.Storage.Bucket, minio.ListObjectsOptions{Prefix: "mods/", Recursive: true})
package storage
