// Package contentstream parses PDF content streams into operator/operand
// sequences.
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//		switch op.Operator {
//		case "re":
//			// op.Operands holds x y w h
//		}
//	}
//
// Parsing is lenient: malformed tokens are skipped and the operations
// recovered so far are still returned with the first error. Inline images
// (BI ... ID ... EI) become one "BI" operation so their binary data never
// desynchronizes the tokenizer.
package contentstream
