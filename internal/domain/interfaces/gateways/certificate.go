package gateways

import (
	"context"
	"io"

	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// CertificateParser decodes raw DER or PEM bytes into a ParsedCertificate
type CertificateParser interface {
	Parse(data []byte) (interfaces.ParsedCertificate, error)
}

// RecordSigner produces detached signatures over exported records
type RecordSigner interface {
	// SignDetached writes an armored detached signature of message to w
	SignDetached(ctx context.Context, message io.Reader, w io.Writer) error
}

// RecordVerifier checks detached signatures over exported records
type RecordVerifier interface {
	// VerifyDetached returns nil when signature is a valid signature of message
	VerifyDetached(ctx context.Context, message, signature io.Reader) error
}
