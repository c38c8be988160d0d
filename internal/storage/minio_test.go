package storage

import "testing"

func TestMinioObjectURL(t *testing.T) {
	tests := []struct {
		name string
		opts MinioOptions
		key  string
		want string
	}{
		{
			name: "endpoint default",
			opts: MinioOptions{Endpoint: "localhost:9000", Bucket: "artstudio"},
			key:  "generated/1700000000000.png",
			want: "http://localhost:9000/artstudio/generated/1700000000000.png",
		},
		{
			name: "ssl endpoint",
			opts: MinioOptions{Endpoint: "s3.example.com", UseSSL: true, Bucket: "art"},
			key:  "a.png",
			want: "https://s3.example.com/art/a.png",
		},
		{
			name: "public base url",
			opts: MinioOptions{Endpoint: "minio:9000", Bucket: "art", PublicBaseURL: "https://cdn.example.com/"},
			key:  "uploads/my file.png",
			want: "https://cdn.example.com/art/uploads/my%20file.png",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &MinioStore{bucket: tc.opts.Bucket, publicURL: publicBaseURL(tc.opts)}
			if got := store.ObjectURL(tc.key); got != tc.want {
				t.Fatalf("ObjectURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMinioObjectKeyPrefix(t *testing.T) {
	store := &MinioStore{bucket: "b", prefix: "generated"}
	if got := store.objectKey("a.png"); got != "generated/a.png" {
		t.Fatalf("objectKey = %q", got)
	}
	uploads := store.WithPrefix("/uploads/")
	if got := uploads.objectKey("a.png"); got != "uploads/a.png" {
		t.Fatalf("objectKey = %q", got)
	}
	if store.prefix != "generated" {
		t.Fatalf("WithPrefix must not mutate the original store")
	}
}
