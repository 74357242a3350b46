package auth

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	breachRangeURL  = "https://api.pwnedpasswords.com/range/"
	breachUserAgent = "tasktracker/0.1"
)

var breachHTTPClient = &http.Client{
	Timeout: 4 * time.Second,
}

// BreachCount reports how many times a password appears in the HIBP breach
// corpus, using the k-anonymity range API: only the first 5 hex characters
// of SHA1(password) leave the process. A zero count means not found.
// Callers decide whether a lookup error fails the registration or is only
// logged; the recommended posture here is fail-open.
func BreachCount(ctx context.Context, password string) (int, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, breachRangeURL+prefix, nil)
	if err != nil {
		return 0, fmt.Errorf("breach request: %w", err)
	}
	req.Header.Set("User-Agent", breachUserAgent)

	resp, err := breachHTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("breach query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("breach query: unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, countStr, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(candidate, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return 0, fmt.Errorf("breach parse count: %w", err)
		}
		return count, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("breach read response: %w", err)
	}
	return 0, nil
}
