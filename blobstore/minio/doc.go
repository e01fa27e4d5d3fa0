// Package minio stores bitmap blobs on MinIO or any other S3-compatible
// server (Ceph, Garage, SeaweedFS) through minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blobs := minioblob.NewStore(client, "bitmaps", "products/")
//	store, err := bitmapstore.Open[uint64](ctx, blobs)
package minio
