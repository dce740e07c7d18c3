package utils

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/furyracing/race-engine/log"
)

// WaitForTCP polls addr until a connection succeeds, the timeout elapses or
// ctx is done.
func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.String("timeout", timeout.String()))
	var d net.Dialer
	op := func() error {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(200*time.Millisecond), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("%s could not be reached after %v: %w", addr, timeout, err)
	}
	log.Debug("tcp connection successful",
		log.String("addr", addr),
		log.String("duration", time.Since(start).String()))
	return nil
}

// ExtractFromNatsURL returns host:port of a nats:// or tls:// url.
func ExtractFromNatsURL(url string) string {
	param := resolveRegex(
		"^(?P<proto>nats|tls)://(.*@)?(?P<addr>(?P<host>[^:/,]+)(:(?P<port>\\d+))?)", url)
	if len(param) == 0 || param["host"] == "" {
		return ""
	}
	if port := param["port"]; port != "" {
		return param["addr"]
	}
	return fmt.Sprintf("%s:4222", param["addr"])
}

func ExtractFromDBURL(url string) string {
	param := resolveRegex(
		"^postgres(ql)?://(.*@)?(?P<addr>(?P<host>.*?)(:(?P<port>\\d+))?)/.*", url)
	if len(param) == 0 {
		return ""
	}
	if port, ok := param["port"]; ok && port != "" {
		return param["addr"] // if port is found, the addr contains our wanted value
	} else {
		return fmt.Sprintf("%s:5432", param["addr"])
	}
}

func resolveRegex(regEx, url string) (paramsMap map[string]string) {
	compRegEx := regexp.MustCompile(regEx)
	match := compRegEx.FindStringSubmatch(url)

	paramsMap = make(map[string]string)
	if match == nil {
		return paramsMap
	}
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && name != "" && i < len(match) {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}
