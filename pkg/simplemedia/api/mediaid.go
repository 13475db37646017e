package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

// ParseMediaID extracts the media locator from the wildcard part of the
// route, shaped {server_name}/{media_id}[/{file_name}]. When more than two
// segments are present the last one is the file name.
func ParseMediaID(r *http.Request) (simplemedia.MediaLocator, error) {
	postpath := chi.URLParam(r, "*")
	loc, err := parseMediaPath(postpath)
	if err != nil {
		return simplemedia.MediaLocator{}, NewError(http.StatusNotFound, CodeUnknown,
			fmt.Sprintf("Invalid media id token %q", postpath))
	}
	return loc, nil
}

func parseMediaPath(postpath string) (simplemedia.MediaLocator, error) {
	segments := strings.Split(postpath, "/")
	if len(segments) < 2 {
		return simplemedia.MediaLocator{}, errors.New("missing media id")
	}

	serverName, err := url.PathUnescape(segments[0])
	if err != nil {
		return simplemedia.MediaLocator{}, err
	}
	mediaID, err := url.PathUnescape(segments[1])
	if err != nil {
		return simplemedia.MediaLocator{}, err
	}
	if mediaID == "" {
		return simplemedia.MediaLocator{}, errors.New("empty media id")
	}
	if err := ValidateServerName(serverName); err != nil {
		return simplemedia.MediaLocator{}, err
	}

	loc := simplemedia.MediaLocator{ServerName: serverName, MediaID: mediaID}
	if len(segments) > 2 {
		// An undecodable file name is dropped rather than failing the request.
		if name, err := url.PathUnescape(segments[len(segments)-1]); err == nil {
			loc.FileName = name
		}
	}
	return loc, nil
}

// ValidateServerName checks that name is a host with an optional port. The
// host may be an IPv4 address, a bracketed IPv6 literal or a DNS name.
func ValidateServerName(name string) error {
	if name == "" {
		return errors.New("server name is empty")
	}

	host, port := splitHostPort(name)
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid port in server name %q", name)
		}
	}

	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return fmt.Errorf("mismatched brackets in server name %q", name)
		}
		ip := net.ParseIP(host[1 : len(host)-1])
		if ip == nil || ip.To4() != nil {
			return fmt.Errorf("server name %q is not a valid IPv6 literal", name)
		}
		return nil
	}

	if host == "" || len(host) > 255 {
		return fmt.Errorf("invalid host in server name %q", name)
	}
	for _, c := range host {
		if !isDNSChar(c) {
			return fmt.Errorf("server name %q contains invalid character %q", name, c)
		}
	}
	return nil
}

func splitHostPort(name string) (host, port string) {
	i := strings.LastIndexByte(name, ':')
	if i < 0 || strings.HasSuffix(name, "]") {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func isDNSChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.' || c == '-'
}
