package externalapi

// WitnessArgs is the structured form of a witness. Lock carries the lock
// script's proof, InputType and OutputType carry data for the type scripts
// of the input and output at the witness index. A nil field is absent.
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}
