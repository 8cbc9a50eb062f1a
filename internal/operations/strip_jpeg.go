package operations

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
	markerAPP1 = 0xe1
	markerAPP2 = 0xe2
	markerAPPD = 0xed
)

var (
	exifHeader      = []byte("Exif\x00\x00")
	xmpHeader       = []byte("http://ns.adobe.com/xap/1.0/\x00")
	photoshopHeader = []byte("Photoshop 3.0\x00")
	iccHeader       = []byte("ICC_PROFILE\x00")
)

// stripJPEG walks the marker segments up to the scan, dropping EXIF, XMP and
// Photoshop blocks. Entropy coded data is copied untouched.
func stripJPEG(r io.Reader, w io.Writer, preserveICC bool) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return err
	}
	if soi[0] != 0xff || soi[1] != markerSOI {
		return errors.New("invalid JPEG SOI")
	}
	if _, err := bw.Write(soi); err != nil {
		return err
	}

	for {
		marker, err := nextMarker(br)
		if err != nil {
			return err
		}

		switch {
		case marker == markerEOI:
			if _, err := bw.Write([]byte{0xff, markerEOI}); err != nil {
				return err
			}
			return bw.Flush()
		case marker == markerSOS:
			if _, err := bw.Write([]byte{0xff, markerSOS}); err != nil {
				return err
			}
			if _, err := io.Copy(bw, br); err != nil {
				return err
			}
			return bw.Flush()
		case marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7):
			// standalone markers carry no length
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return errors.New("invalid JPEG segment length")
		}

		payload := make([]byte, segLen-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return err
		}
		if dropJPEGSegment(marker, payload, preserveICC) {
			continue
		}

		if _, err := bw.Write([]byte{0xff, marker}); err != nil {
			return err
		}
		if _, err := bw.Write(lenBuf); err != nil {
			return err
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
	}
}

// nextMarker skips fill bytes and returns the marker code
func nextMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	for err == nil && b != 0xff {
		b, err = br.ReadByte()
	}
	if err != nil {
		return 0, err
	}

	marker, err := br.ReadByte()
	for err == nil && marker == 0xff {
		marker, err = br.ReadByte()
	}
	return marker, err
}

func dropJPEGSegment(marker byte, payload []byte, preserveICC bool) bool {
	switch marker {
	case markerAPP1:
		return bytes.HasPrefix(payload, exifHeader) || bytes.HasPrefix(payload, xmpHeader)
	case markerAPPD:
		return bytes.HasPrefix(payload, photoshopHeader)
	case markerAPP2:
		return !preserveICC && bytes.HasPrefix(payload, iccHeader)
	}
	return false
}
