package payment_gateway

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"telehealth-service/internal/pkg/dto/requests"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const paypalSigningCN = "messageverificationcerts.paypal.com"

type issuer struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
}

// issue signs a certificate for a fresh key; a nil parent makes it self-signed.
func issue(t *testing.T, parent *issuer, subject pkix.Name, isCA bool, notBefore, notAfter time.Time) *issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		BasicConstraintsValid: true,
		IsCA:                  isCA,
		KeyUsage:              x509.KeyUsageDigitalSignature,
	}
	if isCA || parent == nil {
		template.KeyUsage |= x509.KeyUsageCertSign
	}

	signerCert, signerKey := template, key
	if parent != nil {
		signerCert, signerKey = parent.cert, parent.key
	}
	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &issuer{key: key, cert: cert}
}

type testPKI struct {
	root         *issuer
	intermediate *issuer
}

func newTestPKI(t *testing.T, now time.Time) *testPKI {
	t.Helper()
	root := issue(t, nil, pkix.Name{CommonName: "Test Root CA"}, true, now.Add(-365*24*time.Hour), now.Add(365*24*time.Hour))
	intermediate := issue(t, root, pkix.Name{CommonName: "Test Intermediate CA"}, true, now.Add(-365*24*time.Hour), now.Add(365*24*time.Hour))
	return &testPKI{root: root, intermediate: intermediate}
}

func (p *testPKI) roots() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(p.root.cert)
	return pool
}

type signingFixture struct {
	key     *rsa.PrivateKey
	certPEM []byte
}

// newSigningFixture serves the leaf followed by its chain, the way PayPal publishes it.
func newSigningFixture(t *testing.T, parent *issuer, commonName string, notBefore, notAfter time.Time) *signingFixture {
	t.Helper()
	leaf := issue(t, parent, pkix.Name{CommonName: commonName}, false, notBefore, notAfter)

	bundle := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.cert.Raw})
	if parent != nil {
		bundle = append(bundle, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: parent.cert.Raw})...)
	}
	return &signingFixture{key: leaf.key, certPEM: bundle}
}

func (f *signingFixture) sign(t *testing.T, message string) string {
	t.Helper()
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, f.key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

func TestWebhookVerifier_Verify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pki := newTestPKI(t, now)
	fixture := newSigningFixture(t, pki.intermediate, paypalSigningCN, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	expired := newSigningFixture(t, pki.intermediate, paypalSigningCN, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	selfSigned := newSigningFixture(t, nil, paypalSigningCN, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	foreign := newSigningFixture(t, pki.intermediate, "webhooks.example.com", now.Add(-24*time.Hour), now.Add(24*time.Hour))

	var fetches, followed int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		switch r.URL.Path {
		case "/expired.pem":
			w.Write(expired.certPEM)
		case "/self-signed.pem":
			w.Write(selfSigned.certPEM)
		case "/foreign.pem":
			w.Write(foreign.certPEM)
		case "/moved.pem":
			http.Redirect(w, r, "/redirect-target.pem", http.StatusFound)
		case "/redirect-target.pem":
			atomic.AddInt32(&followed, 1)
			w.Write(fixture.certPEM)
		default:
			w.Write(fixture.certPEM)
		}
	}))
	defer server.Close()

	body := []byte(`{"id":"WH-1","event_type":"CHECKOUT.ORDER.APPROVED"}`)
	transmissionTime := now.Add(-time.Minute).Format(time.RFC3339)
	validHeaders := func() requests.WebhookHeaders {
		return requests.WebhookHeaders{
			TransmissionID:   "tx-1",
			TransmissionTime: transmissionTime,
			TransmissionSig:  fixture.sign(t, ExpectedSignatureMessage("tx-1", transmissionTime, "WEBHOOK-ID", body)),
			CertURL:          server.URL + "/cert.pem",
			AuthAlgo:         "SHA256withRSA",
		}
	}

	verifier := NewWebhookVerifier(WebhookVerifierConfig{
		WebhookID:        "WEBHOOK-ID",
		Tolerance:        10 * time.Minute,
		HTTPClient:       server.Client(),
		AllowedCertHosts: []string{"127.0.0.1"},
		Roots:            pki.roots(),
		Now:              func() time.Time { return now },
	}, zap.NewNop())

	t.Run("valid signature", func(t *testing.T) {
		require.NoError(t, verifier.Verify(context.Background(), validHeaders(), body))
		require.NoError(t, verifier.Verify(context.Background(), validHeaders(), body))
		assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "certificate should be cached")
	})

	tests := []struct {
		name    string
		mutate  func(h *requests.WebhookHeaders)
		body    []byte
		wantErr error
	}{
		{
			name:    "tampered body",
			mutate:  func(h *requests.WebhookHeaders) {},
			body:    []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.REFUNDED"}`),
			wantErr: ErrWebhookSignature,
		},
		{
			name:    "missing signature",
			mutate:  func(h *requests.WebhookHeaders) { h.TransmissionSig = "" },
			wantErr: ErrWebhookHeadersMissing,
		},
		{
			name:    "wrong algorithm",
			mutate:  func(h *requests.WebhookHeaders) { h.AuthAlgo = "SHA1withRSA" },
			wantErr: ErrWebhookAuthAlgo,
		},
		{
			name: "stale transmission",
			mutate: func(h *requests.WebhookHeaders) {
				h.TransmissionTime = now.Add(-time.Hour).Format(time.RFC3339)
			},
			wantErr: ErrWebhookStale,
		},
		{
			name:    "plain http certificate url",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = "http://127.0.0.1/cert.pem" },
			wantErr: ErrWebhookCertURL,
		},
		{
			name:    "foreign certificate host",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = "https://evil.example.com/cert.pem" },
			wantErr: ErrWebhookCertURL,
		},
		{
			name:    "expired certificate",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = server.URL + "/expired.pem" },
			wantErr: ErrWebhookCertificate,
		},
		{
			name:    "untrusted self-signed certificate",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = server.URL + "/self-signed.pem" },
			wantErr: ErrWebhookCertificate,
		},
		{
			name:    "trusted certificate with foreign subject",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = server.URL + "/foreign.pem" },
			wantErr: ErrWebhookCertificate,
		},
		{
			name:    "redirected certificate fetch",
			mutate:  func(h *requests.WebhookHeaders) { h.CertURL = server.URL + "/moved.pem" },
			wantErr: ErrWebhookCertificate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := validHeaders()
			tt.mutate(&headers)
			payload := body
			if tt.body != nil {
				payload = tt.body
			}
			err := verifier.Verify(context.Background(), headers, payload)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("redirect target is never fetched", func(t *testing.T) {
		assert.Equal(t, int32(0), atomic.LoadInt32(&followed))
	})
}

func TestWebhookVerifier_SelfSignedSignatureRejected(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pki := newTestPKI(t, now)
	forged := newSigningFixture(t, nil, paypalSigningCN, now.Add(-time.Hour), now.Add(time.Hour))
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(forged.certPEM)
	}))
	defer server.Close()

	verifier := NewWebhookVerifier(WebhookVerifierConfig{
		WebhookID:        "WEBHOOK-ID",
		HTTPClient:       server.Client(),
		AllowedCertHosts: []string{"127.0.0.1"},
		Roots:            pki.roots(),
		Now:              func() time.Time { return now },
	}, zap.NewNop())

	body := []byte(`{"id":"WH-9","event_type":"PAYMENT.CAPTURE.COMPLETED"}`)
	transmissionTime := now.Format(time.RFC3339)
	headers := requests.WebhookHeaders{
		TransmissionID:   "tx-9",
		TransmissionTime: transmissionTime,
		TransmissionSig:  forged.sign(t, ExpectedSignatureMessage("tx-9", transmissionTime, "WEBHOOK-ID", body)),
		CertURL:          server.URL + "/cert.pem",
		AuthAlgo:         "SHA256withRSA",
	}

	err := verifier.Verify(context.Background(), headers, body)
	assert.ErrorIs(t, err, ErrWebhookCertificate)
}

func TestWebhookVerifier_KeepsCallerClient(t *testing.T) {
	caller := &http.Client{Timeout: time.Second}
	verifier := NewWebhookVerifier(WebhookVerifierConfig{WebhookID: "x", HTTPClient: caller}, zap.NewNop()).(*webhookVerifier)

	assert.Nil(t, caller.CheckRedirect)
	require.NotNil(t, verifier.cfg.HTTPClient.CheckRedirect)
	assert.Equal(t, time.Second, verifier.cfg.HTTPClient.Timeout)
}

func TestWebhookVerifier_RequiresWebhookID(t *testing.T) {
	verifier := NewWebhookVerifier(WebhookVerifierConfig{}, zap.NewNop())
	err := verifier.Verify(context.Background(), requests.WebhookHeaders{}, nil)
	assert.ErrorIs(t, err, ErrWebhookIDNotConfigured)
}

func TestCheckCertURL_DefaultsToPayPal(t *testing.T) {
	verifier := NewWebhookVerifier(WebhookVerifierConfig{WebhookID: "x"}, zap.NewNop()).(*webhookVerifier)

	assert.NoError(t, verifier.checkCertURL("https://api.paypal.com/v1/notifications/certs/CERT-1"))
	assert.NoError(t, verifier.checkCertURL("https://paypal.com/cert"))
	assert.ErrorIs(t, verifier.checkCertURL("https://paypal.com.evil.io/cert"), ErrWebhookCertURL)
	assert.ErrorIs(t, verifier.checkCertURL("https://notpaypal.com/cert"), ErrWebhookCertURL)
}
