package checks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

type fakeCert struct {
	subject   []entities.NameEntry
	sans      []entities.NameEntry
	serial    string
	notBefore time.Time
	notAfter  time.Time
	tbs       entities.AlgorithmIdentifier
	outer     entities.AlgorithmIdentifier
	sansErr   error
}

func (f *fakeCert) DER() []byte { return nil }
func (f *fakeCert) Subject() ([]entities.NameEntry, error) { return f.subject, nil }
func (f *fakeCert) Issuer() ([]entities.NameEntry, error) { return nil, nil }
func (f *fakeCert) SubjectAlternativeNames() ([]entities.NameEntry, error) { return f.sans, f.sansErr }
func (f *fakeCert) Version() (int, error) { return 2, nil }
func (f *fakeCert) SerialNumber() (string, error) { return f.serial, nil }
func (f *fakeCert) NotBefore() (time.Time, error) { return f.notBefore, nil }
func (f *fakeCert) NotAfter() (time.Time, error) { return f.notAfter, nil }
func (f *fakeCert) TBSSignature() (entities.AlgorithmIdentifier, error) { return f.tbs, nil }
func (f *fakeCert) SignatureAlgorithm() (entities.AlgorithmIdentifier, error) {
	return f.outer, nil
}
func (f *fakeCert) BasicConstraintCA() (bool, error) { return false, nil }

func goodCert() *fakeCert {
	ecdsa := entities.AlgorithmIdentifier{LongName: "ecdsa-with-SHA256"}
	return &fakeCert{
		subject: []entities.NameEntry{
			{Key: "O", Value: "Example Ltd"},
			{Key: "CN", Value: "www.example.com"},
		},
		sans: []entities.NameEntry{
			{Key: "DNS", Value: "www.example.com"},
			{Key: "DNS", Value: "*.example.org"},
			{Key: "IP", Value: "10.0.0.1"},
		},
		serial:    "01:5a:f3",
		notBefore: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		notAfter:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		tbs:       ecdsa,
		outer:     ecdsa,
	}
}

func descriptions(observations []entities.Observation) []string {
	out := make([]string, 0, len(observations))
	for _, o := range observations {
		out = append(out, o.Description())
	}
	return out
}

func TestRun_CleanCertificate(t *testing.T) {
	observations, err := Run(goodCert(), Default())
	require.NoError(t, err)
	assert.Empty(t, descriptions(observations))
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeCert)
		want   []string
	}{
		{
			name: "algorithm mismatch",
			mutate: func(c *fakeCert) {
				c.outer = entities.AlgorithmIdentifier{LongName: "sha256WithRSAEncryption", Parameters: []byte{5, 0}}
			},
			want: []string{"Signature algorithm mismatch"},
		},
		{
			name: "parameters mismatch",
			mutate: func(c *fakeCert) {
				c.outer = entities.AlgorithmIdentifier{LongName: "ecdsa-with-SHA256", Parameters: []byte{5, 0}}
			},
			want: []string{"Signature algorithm parameters mismatch"},
		},
		{
			name: "sha1 signature",
			mutate: func(c *fakeCert) {
				sha1 := entities.AlgorithmIdentifier{LongName: "sha1WithRSAEncryption", Parameters: []byte{5, 0}}
				c.tbs, c.outer = sha1, sha1
			},
			want: []string{"Weak signature algorithm"},
		},
		{
			name: "inverted validity",
			mutate: func(c *fakeCert) {
				c.notBefore, c.notAfter = c.notAfter, c.notBefore
			},
			want: []string{"Certificate expires before it becomes valid"},
		},
		{
			name:   "zero serial",
			mutate: func(c *fakeCert) { c.serial = "00" },
			want:   []string{"Serial number is zero"},
		},
		{
			name:   "negative serial",
			mutate: func(c *fakeCert) { c.serial = "-01:02" },
			want:   []string{"Negative serial number"},
		},
		{
			name: "serial too long",
			mutate: func(c *fakeCert) {
				c.serial = "01:02:03:04:05:06:07:08:09:0a:0b:0c:0d:0e:0f:10:11:12:13:14:15"
			},
			want: []string{"Serial number too long"},
		},
		{
			name:   "common name missing from SANs",
			mutate: func(c *fakeCert) { c.subject[1].Value = "mail.example.com" },
			want:   []string{"Common name not in subject alternative names"},
		},
		{
			name: "invalid dns name",
			mutate: func(c *fakeCert) {
				c.sans = append(c.sans, entities.NameEntry{Key: "DNS", Value: "bad..example.com"})
			},
			want: []string{"Invalid DNS name"},
		},
		{
			name: "misplaced wildcard",
			mutate: func(c *fakeCert) {
				c.sans = append(c.sans, entities.NameEntry{Key: "DNS", Value: "www.*.example.com"})
			},
			want: []string{"Invalid DNS name"},
		},
		{
			name: "unknown tld",
			mutate: func(c *fakeCert) {
				c.sans = append(c.sans, entities.NameEntry{Key: "DNS", Value: "intranet.notarealtld"})
			},
			want: []string{"DNS name without a registrable public suffix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := goodCert()
			tt.mutate(cert)

			observations, err := Run(cert, Default())
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(observations))
		})
	}
}

func TestWeakSignature_Reason(t *testing.T) {
	cert := goodCert()
	cert.outer = entities.AlgorithmIdentifier{LongName: "md5WithRSAEncryption"}

	observations, err := (&weakSignature{}).Check(cert)
	require.NoError(t, err)
	require.Len(t, observations, 1)

	reason, ok := observations[0].Reason()
	assert.True(t, ok)
	assert.Equal(t, "md5 digest", reason)
}

func TestRun_PropagatesCheckError(t *testing.T) {
	errBroken := errors.New("truncated extension")
	cert := goodCert()
	cert.sansErr = errBroken

	observations, err := Run(cert, Default())
	require.Error(t, err)
	assert.Nil(t, observations)
	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "common_name")
}

func TestSelect(t *testing.T) {
	all := Default()

	selected := Select(all, []string{"tld", "weak_signature", "unknown"})
	assert.Equal(t, []string{
		"signature_mismatch",
		"validity",
		"serial_number",
		"common_name",
		"dns_names",
	}, Names(selected))
	assert.Len(t, all, 7, "Select must not modify its input")
}

func TestDefault_ReturnsFreshSlice(t *testing.T) {
	first := Default()
	first[0] = nil

	assert.NotNil(t, Default()[0])
}

func TestInvalidHostname(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"www.example.com", ""},
		{"*.example.com", ""},
		{"example.com.", ""},
		{"_dmarc.example.com", ""},
		{"", "empty name"},
		{"-bad.example.com", "label starts or ends with a hyphen"},
		{"exa mple.com", "invalid character  "},
	}

	for _, tt := range tests {
		if got := invalidHostname(tt.name); got != tt.want {
			t.Errorf("invalidHostname(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
