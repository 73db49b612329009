// Package commit assembles and parses commit objects.
package commit

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
)

// Signature identifies who made a commit, and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String renders s as "Name <email> unixtime ±hhmm".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), s.When.Format("-0700"))
}

// ParseSignature parses the output of Signature.String.
func ParseSignature(str string) (Signature, error) {
	lt := strings.LastIndexByte(str, '<')
	gt := strings.LastIndexByte(str, '>')
	if lt < 0 || gt < lt {
		return Signature{}, errors.Errorf("no email in signature %q", str)
	}
	name := strings.TrimSuffix(str[:lt], " ")
	email := str[lt+1 : gt]

	fields := strings.Fields(str[gt+1:])
	if len(fields) != 2 {
		return Signature{}, errors.Errorf("no timestamp in signature %q", str)
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, errors.Wrapf(err, "parsing timestamp in %q", str)
	}
	loc, err := parseZone(fields[1])
	if err != nil {
		return Signature{}, errors.Wrapf(err, "parsing signature %q", str)
	}

	return Signature{
		Name:  name,
		Email: email,
		When:  time.Unix(secs, 0).In(loc),
	}, nil
}

func parseZone(z string) (*time.Location, error) {
	if len(z) != 5 || (z[0] != '+' && z[0] != '-') {
		return nil, errors.Errorf("bad zone offset %q", z)
	}
	hh, err1 := strconv.Atoi(z[1:3])
	mm, err2 := strconv.Atoi(z[3:5])
	if err1 != nil || err2 != nil || mm >= 60 {
		return nil, errors.Errorf("bad zone offset %q", z)
	}
	offset := hh*3600 + mm*60
	if z[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("", offset), nil
}

// Commit is a snapshot of a tree with its authorship and history.
type Commit struct {
	Tree vcs.Addr

	// Parent is the previous commit on the branch,
	// or the zero Addr for a branch's first commit.
	Parent vcs.Addr

	Author    Signature
	Committer Signature
	Message   string
}

// Encode produces the payload of a commit object.
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	if !c.Parent.IsZero() {
		fmt.Fprintf(&buf, "parent %s\n", c.Parent)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteString("\n")
	buf.WriteString(c.Message)
	buf.WriteString("\n")
	return buf.Bytes()
}

// Parse decodes the payload of a commit object.
func Parse(payload []byte) (*Commit, error) {
	header, msg, ok := bytes.Cut(payload, []byte("\n\n"))
	if !ok {
		return nil, errors.Wrap(vcs.ErrCorruptObject, "commit has no message separator")
	}

	var (
		c                                   Commit
		haveTree, haveAuthor, haveCommitter bool
	)
	for _, line := range strings.Split(string(header), "\n") {
		key, val, _ := strings.Cut(line, " ")
		switch key {
		case "tree", "parent":
			addr, err := vcs.AddrFromHex(val)
			if err != nil {
				return nil, errors.Wrapf(vcs.ErrCorruptObject, "commit %s line: %s", key, err)
			}
			if key == "tree" {
				c.Tree, haveTree = addr, true
			} else if !c.Parent.IsZero() {
				return nil, errors.Wrap(vcs.ErrCorruptObject, "commit has more than one parent")
			} else {
				c.Parent = addr
			}

		case "author", "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, errors.Wrapf(vcs.ErrCorruptObject, "commit %s line: %s", key, err)
			}
			if key == "author" {
				c.Author, haveAuthor = sig, true
			} else {
				c.Committer, haveCommitter = sig, true
			}

		default:
			return nil, errors.Wrapf(vcs.ErrCorruptObject, "unknown commit header %q", key)
		}
	}
	if !haveTree || !haveAuthor || !haveCommitter {
		return nil, errors.Wrap(vcs.ErrCorruptObject, "commit is missing a header")
	}

	c.Message = strings.TrimSuffix(string(msg), "\n")
	return &c, nil
}

// Write stores c as a commit object.
func Write(ctx context.Context, store vcs.Store, c *Commit) (vcs.Addr, error) {
	addr, _, err := store.Put(ctx, vcs.Commit, c.Encode())
	return addr, errors.Wrap(err, "storing commit")
}

// Read gets and parses the commit object at addr.
func Read(ctx context.Context, g vcs.Getter, addr vcs.Addr) (*Commit, error) {
	kind, payload, err := g.Get(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "getting commit %s", addr)
	}
	if kind != vcs.Commit {
		return nil, errors.Errorf("%s is a %s, not a commit", addr, kind)
	}
	c, err := Parse(payload)
	return c, errors.Wrapf(err, "parsing commit %s", addr)
}
