package resolve

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ShellSource reads the raw shell template.
type ShellSource interface {
	ReadShell(ctx context.Context) (string, error)
}

// FileShell reads the shell from a file system, typically os.DirFS of the
// client build output or the source tree.
type FileShell struct {
	FS   fs.FS
	Name string
}

// ReadShell implements ShellSource.
func (f *FileShell) ReadShell(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(f.FS, f.Name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(data), nil
}

// S3API is the subset of the S3 client used to fetch the shell.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Shell reads the shell from an object in a bucket.
type S3Shell struct {
	Client S3API
	Bucket string
	Key    string
}

// ReadShell implements ShellSource.
func (s *S3Shell) ReadShell(ctx context.Context) (string, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return "", fmt.Errorf("get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return string(data), nil
}

// Cached wraps a ShellSource and keeps the first successful read. Failed
// reads are not cached. Use it for the immutable production shell only.
func Cached(src ShellSource) ShellSource {
	return &cachedShell{src: src}
}

type cachedShell struct {
	src ShellSource

	mu   sync.Mutex
	html string
	ok   bool
}

func (c *cachedShell) ReadShell(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok {
		return c.html, nil
	}
	html, err := c.src.ReadShell(ctx)
	if err != nil {
		return "", err
	}
	c.html, c.ok = html, true
	return html, nil
}
