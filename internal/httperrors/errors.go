// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures into troubleshooting hints for
// the person running the load test.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is the broad cause of a network failure.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	Refused
	TLS
)

func (c Category) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case Refused:
		return "connection refused"
	case TLS:
		return "tls"
	default:
		return "network"
	}
}

// Classify inspects err and its chain.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Generic
	case isDNSError(err):
		return DNS
	case isTimeoutError(err):
		return Timeout
	case isConnectionRefusedError(err):
		return Refused
	case isTLSError(err):
		return TLS
	default:
		return Generic
	}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

// Hints returns what to check for a failure of category c against host.
func Hints(c Category, host string) []string {
	switch c {
	case Timeout:
		return []string{
			host + " is slow or overloaded; a load test may be the cause",
			"raise TIXLOAD_HTTP_TIMEOUT if slow responses are expected",
			"a firewall may be dropping packets",
		}
	case DNS:
		return []string{
			"BASE_URL and SEATS_IO_URL are spelled correctly (" + host + ")",
			"your DNS resolver works and can see internal hosts if the target is private",
		}
	case Refused:
		return []string{
			"the target service is running and listening on the expected port",
			"BASE_URL points to the right environment (" + host + ")",
		}
	case TLS:
		return []string{
			"the certificate of " + host + " is valid and trusted by this machine",
			"no proxy is intercepting HTTPS",
			"the system clock is correct",
		}
	default:
		return []string{
			"your network can reach " + host,
			"no firewall blocks outbound HTTPS",
		}
	}
}

// Print shows a friendly explanation of err, raised while doing action
// against target (a URL or host).
func Print(err error, action, target string) {
	if err == nil {
		return
	}
	host := ExtractHostFromURL(target)
	c := Classify(err)

	pterm.Error.Printf("%s failed while %s (%s)\n", strings.ToUpper(c.String()[:1])+c.String()[1:], action, host)
	pterm.Println("Please check:")
	for _, h := range Hints(c, host) {
		pterm.Println("  • " + h)
	}
	pterm.Println()
}

// ExtractHostFromURL returns the host of urlStr, or urlStr itself when it is
// not a URL with a host.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		if urlStr == "" {
			return "server"
		}
		return urlStr
	}
	return u.Host
}
