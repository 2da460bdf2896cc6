package stats

import "fmt"

// Error codes named explicitly by spec §7. Additional codes may be minted
// per check but must follow the same [Ennnn] shape.
const (
	CodeRdhSanity      = "E10"
	CodeRdhRunning     = "E11"
	CodePayloadPadding = "E20"
	CodeFsmAmbiguous   = "E30"
	CodeAlpideBunch    = "E9003"
	CodeAlpideCount    = "E9004"
	CodeAlpideOrder    = "E9005"
	CodeCustomCheck    = "E40"
)

// FormatError renders a recoverable error into the contract string every
// downstream consumer (finalization sort, dedupe, the error-code filter)
// depends on: a "[Ennnn]" code token and a "0xHEX:" absolute-offset token.
// Both tokens must appear in this exact shape (spec §6, §9).
func FormatError(code string, offset uint64, detail string) string {
	return fmt.Sprintf("[%s] 0x%X: %s", code, offset, detail)
}

// RecoverableError is a validator-level error: counted, reported, never
// stops the pipeline by itself (unless max_tolerate_errors is reached).
type RecoverableError struct {
	Code   string
	Offset uint64
	Detail string
}

func (e *RecoverableError) Error() string {
	return FormatError(e.Code, e.Offset, e.Detail)
}

// NewRecoverableError builds a RecoverableError.
func NewRecoverableError(code string, offset uint64, detail string) *RecoverableError {
	return &RecoverableError{Code: code, Offset: offset, Detail: detail}
}
