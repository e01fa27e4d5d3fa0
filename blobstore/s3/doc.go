// Package s3 stores bitmap blobs in Amazon S3.
//
//	blobs, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("bitmaps/products/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	store, err := bitmapstore.Open[uint64](ctx, blobs)
//
// Reads issue ranged GETs. Small blobs are uploaded with a single PutObject
// carrying a CRC32C checksum; larger ones and streamed writes go through the
// multipart uploader.
package s3
