package verify

import "tlog.app/go/errors"

// terminators is the set of opcodes which end a basic block.
var terminators = map[string]bool{
	"ret":         true,
	"br":          true,
	"switch":      true,
	"indirectbr":  true,
	"invoke":      true,
	"unreachable": true,
	"callbr":      true,
	"resume":      true,
	"catchswitch": true,
	"catchret":    true,
	"cleanupret":  true,
}

// Check validates the structural invariants of a module shape: every block of
// every defined function ends in exactly one terminator, and the entry
// function consists of a single block terminated by one `ret`.
func Check(s Shape, entryName string) error {
	for _, fs := range s.Functions {
		if fs.Declaration {
			continue
		}

		if len(fs.Blocks) == 0 {
			return errors.New("function `%s` has no body", fs.Name)
		}

		for _, bs := range fs.Blocks {
			if err := checkBlock(fs.Name, bs); err != nil {
				return err
			}
		}
	}

	entry, ok := s.Function(entryName)
	if !ok {
		return errors.New("missing entry function `%s`", entryName)
	}

	if entry.Declaration {
		return errors.New("entry function `%s` is only declared", entryName)
	}

	if len(entry.Blocks) != 1 {
		return errors.New("entry function `%s` has %d blocks, expected 1", entryName, len(entry.Blocks))
	}

	ops := entry.Blocks[0].Ops
	if ops[len(ops)-1] != "ret" {
		return errors.New("entry block of `%s` ends in `%s`, expected `ret`", entryName, ops[len(ops)-1])
	}

	return nil
}

func checkBlock(fnName string, bs BlockShape) error {
	if len(bs.Ops) == 0 {
		return errors.New("block `%s` of `%s` is empty", bs.Name, fnName)
	}

	for i, op := range bs.Ops {
		last := i == len(bs.Ops)-1

		if terminators[op] && !last {
			return errors.New("block `%s` of `%s` has `%s` before its end", bs.Name, fnName, op)
		} else if !terminators[op] && last {
			return errors.New("block `%s` of `%s` is not terminated", bs.Name, fnName)
		}
	}

	return nil
}
