package httptool

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
)

// Failure classification labels reported in ErrorEnvelope.Type.
const (
	FailureInvalidURL = "InvalidURL"
	FailureDNS        = "DNSError"
	FailureConnection = "ConnectionError"
	FailureTLS        = "TLSError"
	FailureBodyEncode = "BodyEncodeError"
	FailureRequest    = "RequestError"
)

// classifyFailure labels a transport error that did not involve a timeout.
func classifyFailure(err error) string {
	if errors.Is(err, errInvalidURL) {
		return FailureInvalidURL
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return FailureTLS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return FailureInvalidURL
	}
	return FailureRequest
}

// failureMessage strips the url.Error wrapper so the message names the cause
// rather than repeating the method and URL.
func failureMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
