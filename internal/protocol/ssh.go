package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"dte/internal/connector"
	"dte/internal/xerr"
)

func init() {
	Register(Scheme{
		Name: "ssh",
		SourceFactory: func(loc Location, opts connector.Options) (connector.Source, error) {
			return openSSHSource(loc, opts)
		},
	})
}

// openSSHSource secure-copies the remote file to a local temporary file
// over an SSH session, then opens it under format dispatch. Host key
// verification is intentionally out of scope for this connector; callers
// needing it should tunnel through a configured SSH agent/known_hosts via
// their environment instead.
func openSSHSource(loc Location, opts connector.Options) (connector.Source, error) {
	if loc.Host == "" {
		return nil, xerr.Configuration("ssh URI %s has no host", loc.Masked())
	}
	port := loc.PortOrDefault(22)

	var auth []ssh.AuthMethod
	if loc.Password != "" {
		auth = append(auth, ssh.Password(loc.Password))
	}
	if len(auth) == 0 {
		return nil, xerr.Configuration("ssh URI %s has no credentials", loc.Masked())
	}

	config := &ssh.ClientConfig{
		User:            loc.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", loc.Host, port), config)
	if err != nil {
		return nil, xerr.Connection("dialing %s: %v", loc.Masked(), err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, xerr.Connection("opening ssh session to %s: %v", loc.Masked(), err)
	}
	defer session.Close()

	remotePath := "/" + loc.Path
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("dte-%s%s", uuid.NewString(), filepath.Ext(remotePath)))
	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, xerr.Connection("creating temp file for %s: %v", loc.Masked(), err)
	}
	session.Stdout = out

	if err := session.Run(fmt.Sprintf("cat %q", remotePath)); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return nil, xerr.Connection("copying %s: %v", loc.Masked(), err)
	}
	out.Close()

	f, err := DetectFormat(tmpPath, opts.GetDefault("source_type", ""))
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	src, err := f.SourceFactory(tmpPath, loc.Fragment, opts)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return &tempFileSource{Source: src, path: tmpPath}, nil
}
