package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/smithy-go"

	"citycore/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestMockStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	const key = "snapshots/buildings.json"
	if _, err := s.Head(ctx, key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before put, got %v", err)
	}
	info, err := s.Put(ctx, key, strings.NewReader(`{"1":{}}`), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != key || info.Size != 8 || info.ETag != "etag123" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, rc, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"1":{}}` {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := s.Put(ctx, "other.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := s.List(ctx, "snapshots/")
	if err != nil || len(list) != 1 || list[0].Key != key {
		t.Fatalf("unexpected list %+v %v", list, err)
	}

	if ok, err := s.Delete(ctx, key); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, key); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	nf := mapError("k", &smithy.GenericAPIError{Code: "NoSuchKey"})
	if !errors.Is(nf, core.ErrNotFound) {
		t.Fatalf("NoSuchKey should map to ErrNotFound, got %v", nf)
	}
	other := &smithy.GenericAPIError{Code: "AccessDenied"}
	if got := mapError("k", other); got != other {
		t.Fatalf("unrelated errors must pass through, got %v", got)
	}
	plain := fmt.Errorf("dial: %w", io.ErrUnexpectedEOF)
	if got := mapError("k", plain); got != plain {
		t.Fatalf("plain errors must pass through, got %v", got)
	}
}

func TestDecodeChunked(t *testing.T) {
	raw := "5;chunk-signature=abc\r\nhello\r\n6\r\n world\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"
	got, err := decodeChunked([]byte(raw))
	if err != nil || string(got) != "hello world" {
		t.Fatalf("decodeChunked = %q, %v", got, err)
	}
	if _, err := decodeChunked([]byte("zz\r\n")); err == nil {
		t.Fatalf("expected size parse error")
	}
}
