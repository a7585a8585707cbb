package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"dagstore/internal/dag"
)

var (
	errUsage    = errors.New("usage")
	errNotFound = errors.New("not found")
)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(ctx context.Context, s *dag.Store, args []string, in io.Reader, out io.Writer) error
}

var commands = map[string]command{
	"put": {
		usage:   "put [ref...]",
		help:    "store stdin as a chunk referencing refs, print its hash",
		maxArgs: -1,
		run:     runPut,
	},
	"get": {
		usage:   "get <hash>",
		help:    "write a chunk's data to stdout",
		minArgs: 1,
		maxArgs: 1,
		run:     runGet,
	},
	"refs": {
		usage:   "refs <hash>",
		help:    "list the chunks a chunk references",
		minArgs: 1,
		maxArgs: 1,
		run:     runRefs,
	},
	"has": {
		usage:   "has <hash>",
		help:    "report whether a chunk is stored",
		minArgs: 1,
		maxArgs: 1,
		run:     runHas,
	},
	"set-head": {
		usage:   "set-head <name> <hash>",
		help:    "point a head at a chunk",
		minArgs: 2,
		maxArgs: 2,
		run:     runSetHead,
	},
	"get-head": {
		usage:   "get-head <name>",
		help:    "print the hash a head points at",
		minArgs: 1,
		maxArgs: 1,
		run:     runGetHead,
	},
	"del-head": {
		usage:   "del-head <name>",
		help:    "remove a head",
		minArgs: 1,
		maxArgs: 1,
		run:     runDelHead,
	},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func run(ctx context.Context, s *dag.Store, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	c, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	rest := args[1:]
	if len(rest) < c.minArgs || (c.maxArgs >= 0 && len(rest) > c.maxArgs) {
		return fmt.Errorf("%w: %s", errUsage, c.usage)
	}
	return c.run(ctx, s, rest, in, out)
}

func parseHashes(args []string) ([]dag.Hash, error) {
	hashes := make([]dag.Hash, 0, len(args))
	for _, a := range args {
		h, err := dag.ParseHash(a)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func runPut(ctx context.Context, s *dag.Store, args []string, in io.Reader, out io.Writer) error {
	refs, err := parseHashes(args)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading chunk data: %w", err)
	}
	c := dag.NewChunk(data, refs)
	if err := s.WithWrite(ctx, func(w *dag.Write) error {
		return w.PutChunk(c)
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, c.Hash)
	return err
}

func getChunk(ctx context.Context, s *dag.Store, arg string) (dag.Chunk, error) {
	h, err := dag.ParseHash(arg)
	if err != nil {
		return dag.Chunk{}, err
	}
	var (
		c  dag.Chunk
		ok bool
	)
	err = s.WithRead(ctx, func(r *dag.Read) error {
		c, ok, err = r.GetChunk(h)
		return err
	})
	if err != nil {
		return dag.Chunk{}, err
	}
	if !ok {
		return dag.Chunk{}, fmt.Errorf("chunk %s: %w", h, errNotFound)
	}
	return c, nil
}

func runGet(ctx context.Context, s *dag.Store, args []string, _ io.Reader, out io.Writer) error {
	c, err := getChunk(ctx, s, args[0])
	if err != nil {
		return err
	}
	_, err = out.Write(c.Data)
	return err
}

func runRefs(ctx context.Context, s *dag.Store, args []string, _ io.Reader, out io.Writer) error {
	c, err := getChunk(ctx, s, args[0])
	if err != nil {
		return err
	}
	for _, ref := range c.Meta {
		if _, err := fmt.Fprintln(out, ref); err != nil {
			return err
		}
	}
	return nil
}

func runHas(ctx context.Context, s *dag.Store, args []string, _ io.Reader, out io.Writer) error {
	h, err := dag.ParseHash(args[0])
	if err != nil {
		return err
	}
	var has bool
	if err := s.WithRead(ctx, func(r *dag.Read) error {
		has, err = r.HasChunk(h)
		return err
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, has)
	return err
}

func runSetHead(ctx context.Context, s *dag.Store, args []string, _ io.Reader, _ io.Writer) error {
	h, err := dag.ParseHash(args[1])
	if err != nil {
		return err
	}
	return s.WithWrite(ctx, func(w *dag.Write) error {
		return w.SetHead(args[0], h)
	})
}

func runGetHead(ctx context.Context, s *dag.Store, args []string, _ io.Reader, out io.Writer) error {
	var (
		h  dag.Hash
		ok bool
	)
	err := s.WithRead(ctx, func(r *dag.Read) error {
		var err error
		h, ok, err = r.GetHead(args[0])
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("head %q: %w", args[0], errNotFound)
	}
	_, err = fmt.Fprintln(out, h)
	return err
}

func runDelHead(ctx context.Context, s *dag.Store, args []string, _ io.Reader, _ io.Writer) error {
	return s.WithWrite(ctx, func(w *dag.Write) error {
		return w.RemoveHead(args[0])
	})
}
