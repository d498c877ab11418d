package listener

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

const extConsoleUser = "texter-console-user"

// AuthorizedKeys maps a marshalled public key to the console name it proves.
type AuthorizedKeys map[string]string

// LoadAuthorizedKeys reads an OpenSSH authorized_keys file. The comment of
// each entry is the console name the key logs in as.
func LoadAuthorizedKeys(path string) (AuthorizedKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading authorized keys %q: %w", path, err)
	}
	return ParseAuthorizedKeys(data)
}

func ParseAuthorizedKeys(data []byte) (AuthorizedKeys, error) {
	keys := AuthorizedKeys{}
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		pub, comment, _, _, err := ssh.ParseAuthorizedKey(line)
		if err != nil {
			return nil, fmt.Errorf("parsing authorized key %d: %w", i+1, err)
		}

		name := strings.TrimSpace(comment)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("authorized key %d: comment must be a single console name", i+1)
		}
		keys[string(pub.Marshal())] = name
	}
	return keys, nil
}

// Check is an ssh PublicKeyCallback. The key must be listed for the login
// user; the matched name travels in the connection permissions.
func (k AuthorizedKeys) Check(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
	name, ok := k[string(key.Marshal())]
	if !ok || !strings.EqualFold(name, conn.User()) {
		return nil, fmt.Errorf("key not authorized for %q", conn.User())
	}
	return &ssh.Permissions{
		Extensions: map[string]string{extConsoleUser: name},
	}, nil
}

// identity returns the console identity of an established connection.
func identity(conn *ssh.ServerConn) Identity {
	if conn.Permissions != nil {
		if name := conn.Permissions.Extensions[extConsoleUser]; name != "" {
			return Identity{Name: name, Verified: true}
		}
	}
	return Identity{Name: conn.User()}
}
