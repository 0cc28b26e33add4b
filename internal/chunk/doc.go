// Package chunk moves a presence bitmap between two ranks under a bounded
// message size.
//
// A buffer of length L is cut with chunk size C into k = L/C full chunks
// tagged ARRAY followed by one LAST chunk of length L mod C. The LAST chunk is
// always sent, even when it is empty, so every stream has exactly k+1 frames.
//
// # Frame Format
//
//	┌──────────┬──────────┬────────────┬──────────────┬─────────────┐
//	│ Seq (8)  │ Codec(1) │ RawLen (4) │ XXH3 (8)     │ Payload     │
//	└──────────┴──────────┴────────────┴──────────────┴─────────────┘
//
// All integers are little endian. Seq numbers the frames of one stream from 0;
// the receiver checks it but never reorders. The checksum covers the decoded
// chunk. Payload codecs fall back to Raw whenever encoding does not shrink the
// chunk, so a frame never exceeds HeaderSize + C bytes.
//
// # Receive Side
//
// A Receiver drains one source rank at a time into a Merger (OR at the chunk
// offset) using one wire buffer and one scratch buffer of size C. Any deviation
// from the expected stream is a *ProtocolError.
package chunk
