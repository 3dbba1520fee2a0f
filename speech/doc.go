// Package speech wires speech-to-text recognizers into the assistant.
//
// A Recognizer is the platform source of transcripts (an on-device service,
// a cloud API, a scripted source in tests). A Listener owns one recognizer,
// enforces its Init / Start / Stop / Close lifecycle and forwards every final
// transcript to a deliver function, typically the assistant's transcript
// slot.
package speech
