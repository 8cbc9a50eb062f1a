package operations

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// stripPNG copies a PNG chunk by chunk, dropping text, time and EXIF chunks.
// Pixel data is never decoded.
func stripPNG(r io.Reader, w io.Writer, preserveICC bool) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return errors.New("invalid PNG signature")
	}
	if _, err := bw.Write(sig); err != nil {
		return err
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		length := int64(binary.BigEndian.Uint32(header[:4]))
		chunk := string(header[4:])

		// payload plus CRC
		if dropPNGChunk(chunk, preserveICC) {
			if _, err := io.CopyN(io.Discard, br, length+4); err != nil {
				return err
			}
		} else {
			if _, err := bw.Write(header); err != nil {
				return err
			}
			if _, err := io.CopyN(bw, br, length+4); err != nil {
				return err
			}
		}

		if chunk == "IEND" {
			break
		}
	}

	return bw.Flush()
}

func dropPNGChunk(chunk string, preserveICC bool) bool {
	switch chunk {
	case "tEXt", "zTXt", "iTXt", "eXIf", "tIME":
		return true
	case "iCCP":
		return !preserveICC
	}
	return false
}
