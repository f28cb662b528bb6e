// SPDX-License-Identifier: EPL-2.0

// Package export turns a sample buffer into a downloadable artifact.
//
// An Exporter validates the requested Settings, looks up an Encoder for the
// format and hands the encoded bytes to a Sink. Only WAV is registered by
// default. Asking for MP3 without registering an encoder fails with
// ErrEncoderUnavailable; the data is never relabelled as another format.
package export
