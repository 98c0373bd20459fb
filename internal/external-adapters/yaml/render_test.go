package yaml

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

func sampleDescription() *entities.CertificateDescription {
	return &entities.CertificateDescription{
		DER:     []byte{0x30, 0x00},
		Subject: []entities.NameAttribute{{Type: "CN", Value: "com.example.www"}},
		Version: "2",
		TBSSignature: entities.SignatureAlgorithm{
			AlgorithmID: "ecdsa-with-SHA256",
		},
		CertSignature: entities.SignatureAlgorithm{
			AlgorithmID: "sha256WithRSAEncryption",
			Parameters:  []byte{0x05, 0x00},
		},
		Observations: []entities.ObservationRecord{
			{Description: "Weak", Reason: "", Details: structpb.NewStringValue("sha1")},
		},
	}
}

func TestRenderRecord_JSON(t *testing.T) {
	out, err := RenderRecord(sampleDescription(), entities.OutputJSON)
	if err != nil {
		t.Fatalf("RenderRecord() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}

	tbs := decoded["tbs_signature"].(map[string]any)
	if _, ok := tbs["parameters"]; ok {
		t.Error("tbs_signature.parameters should be omitted when absent")
	}
	cert := decoded["cert_signature"].(map[string]any)
	if cert["parameters"] != "BQA=" {
		t.Errorf("cert_signature.parameters = %v, want BQA=", cert["parameters"])
	}

	obs := decoded["observations"].([]any)[0].(map[string]any)
	if obs["details"] != "sha1" {
		t.Errorf("details = %v, want sha1", obs["details"])
	}
}

func TestRenderRecord_YAML(t *testing.T) {
	out, err := RenderRecord(sampleDescription(), entities.OutputYAML)
	if err != nil {
		t.Fatalf("RenderRecord() error = %v", err)
	}

	text := string(out)
	if strings.Contains(text, "{") {
		t.Errorf("YAML output should use block style:\n%s", text)
	}
	if strings.Index(text, "der:") > strings.Index(text, "subject:") {
		t.Errorf("YAML output should keep field order:\n%s", text)
	}

	var decoded struct {
		Version string `yaml:"version"`
		Subject []struct {
			Type  string `yaml:"type"`
			Value string `yaml:"value"`
		} `yaml:"subject"`
	}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if decoded.Version != "2" {
		t.Errorf("version = %q, want \"2\"", decoded.Version)
	}
	if len(decoded.Subject) != 1 || decoded.Subject[0].Value != "com.example.www" {
		t.Errorf("subject = %+v", decoded.Subject)
	}
}

func TestRenderRecord_UnknownFormat(t *testing.T) {
	if _, err := RenderRecord(sampleDescription(), "xml"); err == nil {
		t.Error("RenderRecord() should reject unknown formats")
	}
}
