package payment_gateway

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

const (
	webhookAuthAlgo       = "SHA256withRSA"
	paypalCertHost        = "paypal.com"
	maxCertificateBodyLen = 64 << 10
)

var (
	ErrWebhookHeadersMissing  = errors.New("webhook transmission headers missing")
	ErrWebhookIDNotConfigured = errors.New("webhook id not configured")
	ErrWebhookAuthAlgo        = errors.New("unsupported webhook auth algorithm")
	ErrWebhookStale           = errors.New("webhook transmission time outside tolerance")
	ErrWebhookCertURL         = errors.New("webhook certificate url not trusted")
	ErrWebhookCertificate     = errors.New("webhook certificate invalid")
	ErrWebhookSignature       = errors.New("webhook signature mismatch")

	errCertRedirect = errors.New("certificate fetch redirected")
)

type WebhookVerifierConfig struct {
	WebhookID    string
	Tolerance    time.Duration
	CertCacheTTL time.Duration
	HTTPClient   *http.Client
	// AllowedCertHosts defaults to paypal.com and its subdomains.
	AllowedCertHosts []string
	// Roots anchors the signing certificate chain; nil uses the system pool.
	Roots *x509.CertPool
	Now   func() time.Time
}

type cachedCertificate struct {
	cert      *x509.Certificate
	fetchedAt time.Time
}

type webhookVerifier struct {
	cfg WebhookVerifierConfig
	Log *zap.Logger

	mu    sync.Mutex
	certs map[string]cachedCertificate
}

// NewWebhookVerifier checks PayPal transmission signatures locally against the signing certificate.
func NewWebhookVerifier(cfg WebhookVerifierConfig, logger *zap.Logger) contracts.WebhookVerifier {
	client := &http.Client{Timeout: 10 * time.Second}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		client = &copied
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return errCertRedirect
	}
	cfg.HTTPClient = client
	if len(cfg.AllowedCertHosts) == 0 {
		cfg.AllowedCertHosts = []string{paypalCertHost}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 10 * time.Minute
	}
	if cfg.CertCacheTTL <= 0 {
		cfg.CertCacheTTL = time.Hour
	}
	return &webhookVerifier{
		cfg:   cfg,
		Log:   logger,
		certs: make(map[string]cachedCertificate),
	}
}

func (v *webhookVerifier) Verify(ctx context.Context, headers requests.WebhookHeaders, body []byte) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if v.cfg.WebhookID == "" {
		return ErrWebhookIDNotConfigured
	}
	if headers.TransmissionID == "" || headers.TransmissionTime == "" || headers.TransmissionSig == "" || headers.CertURL == "" {
		return ErrWebhookHeadersMissing
	}
	if headers.AuthAlgo != webhookAuthAlgo {
		return fmt.Errorf("%w: %s", ErrWebhookAuthAlgo, headers.AuthAlgo)
	}

	transmittedAt, err := time.Parse(time.RFC3339, headers.TransmissionTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookStale, err)
	}
	now := v.cfg.Now()
	if skew := now.Sub(transmittedAt); skew > v.cfg.Tolerance || skew < -v.cfg.Tolerance {
		return fmt.Errorf("%w: skew %s", ErrWebhookStale, skew)
	}

	if err := v.checkCertURL(headers.CertURL); err != nil {
		return err
	}

	cert, err := v.certificate(ctx, headers.CertURL, now)
	if err != nil {
		v.Log.Warn("webhookVerifier.Verify certificate unusable",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: public key is not RSA", ErrWebhookCertificate)
	}

	signature, err := base64.StdEncoding.DecodeString(headers.TransmissionSig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	digest := sha256.Sum256([]byte(ExpectedSignatureMessage(headers.TransmissionID, headers.TransmissionTime, v.cfg.WebhookID, body)))
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}
	return nil
}

// ExpectedSignatureMessage builds the string PayPal signs: transmissionId|transmissionTime|webhookId|crc32(body).
func ExpectedSignatureMessage(transmissionID, transmissionTime, webhookID string, body []byte) string {
	return fmt.Sprintf("%s|%s|%s|%d", transmissionID, transmissionTime, webhookID, crc32.ChecksumIEEE(body))
}

func (v *webhookVerifier) checkCertURL(raw string) error {
	certURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookCertURL, err)
	}
	if certURL.Scheme != "https" {
		return fmt.Errorf("%w: scheme %s", ErrWebhookCertURL, certURL.Scheme)
	}
	host := strings.ToLower(certURL.Hostname())
	for _, allowed := range v.cfg.AllowedCertHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %s", ErrWebhookCertURL, host)
}

func (v *webhookVerifier) certificate(ctx context.Context, certURL string, now time.Time) (*x509.Certificate, error) {
	v.mu.Lock()
	cached, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < v.cfg.CertCacheTTL {
		return cached.cert, checkValidity(cached.cert, now)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, certURL, nil)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	resp, err := v.cfg.HTTPClient.Do(req)
	if errors.Is(err, errCertRedirect) {
		return nil, fmt.Errorf("%w: %v", ErrWebhookCertificate, err)
	}
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, fmt.Errorf("%w: fetch status %d", ErrWebhookCertificate, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCertificateBodyLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookCertificate, err)
	}

	cert, err := v.verifyChain(raw, now)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.certs[certURL] = cachedCertificate{cert: cert, fetchedAt: now}
	v.mu.Unlock()
	return cert, nil
}

// verifyChain parses the leaf and any intermediates from the PEM bundle, verifies the
// chain up to the configured roots and requires a PayPal subject on the leaf.
func (v *webhookVerifier) verifyChain(raw []byte, now time.Time) (*x509.Certificate, error) {
	var chain []*x509.Certificate
	for {
		var block *pem.Block
		block, raw = pem.Decode(raw)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWebhookCertificate, err)
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no PEM certificate", ErrWebhookCertificate)
	}

	leaf := chain[0]
	if err := checkValidity(leaf, now); err != nil {
		return nil, err
	}
	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}
	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         v.cfg.Roots,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookCertificate, err)
	}
	if !isPayPalSubject(leaf) {
		return nil, fmt.Errorf("%w: subject %q", ErrWebhookCertificate, leaf.Subject.String())
	}
	return leaf, nil
}

func isPayPalSubject(cert *x509.Certificate) bool {
	cn := strings.ToLower(cert.Subject.CommonName)
	if cn == paypalCertHost || strings.HasSuffix(cn, "."+paypalCertHost) {
		return true
	}
	for _, org := range cert.Subject.Organization {
		if strings.HasPrefix(strings.ToLower(org), "paypal") {
			return true
		}
	}
	return false
}

func checkValidity(cert *x509.Certificate, now time.Time) error {
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return fmt.Errorf("%w: outside validity window", ErrWebhookCertificate)
	}
	return nil
}
