/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package wire

import "github.com/pseudonym/chordring/errors"

// --- TCP peer-to-peer messages -----------------------------------------

// Get is `GET hash transid`.
type Get struct {
	Hash    string
	TransID string
}

func EncodeGet(m Get) []byte { return Encode(string(VerbGet), m.Hash, m.TransID) }

func ParseGet(args []string) (Get, error) {
	if len(args) != 2 {
		return Get{}, errors.ErrMalformedMessage.Error()
	}
	return Get{Hash: args[0], TransID: args[1]}, nil
}

// Data is `DATA base64 transid`.
type Data struct {
	Payload string
	TransID string
}

func EncodeData(m Data) []byte { return Encode(string(VerbData), m.Payload, m.TransID) }

func ParseData(args []string) (Data, error) {
	if len(args) != 2 {
		return Data{}, errors.ErrMalformedMessage.Error()
	}
	return Data{Payload: args[0], TransID: args[1]}, nil
}

// ErrorMsg is `ERROR msg transid`.
type ErrorMsg struct {
	Msg     string
	TransID string
}

func EncodeError(m ErrorMsg) []byte { return Encode(string(VerbError), m.Msg, m.TransID) }

func ParseError(args []string) (ErrorMsg, error) {
	if len(args) != 2 {
		return ErrorMsg{}, errors.ErrMalformedMessage.Error()
	}
	return ErrorMsg{Msg: args[0], TransID: args[1]}, nil
}

// Put is `PUT base64 transid`.
type Put struct {
	Payload string
	TransID string
}

func EncodePut(m Put) []byte { return Encode(string(VerbPut), m.Payload, m.TransID) }

func ParsePut(args []string) (Put, error) {
	if len(args) != 2 {
		return Put{}, errors.ErrMalformedMessage.Error()
	}
	return Put{Payload: args[0], TransID: args[1]}, nil
}

// OK is `OK hash transid`.
type OK struct {
	Hash    string
	TransID string
}

func EncodeOK(m OK) []byte { return Encode(string(VerbOK), m.Hash, m.TransID) }

func ParseOK(args []string) (OK, error) {
	if len(args) != 2 {
		return OK{}, errors.ErrMalformedMessage.Error()
	}
	return OK{Hash: args[0], TransID: args[1]}, nil
}

// Retr is `RETR low high`.
type Retr struct {
	Low  string
	High string
}

func EncodeRetr(m Retr) []byte { return Encode(string(VerbRetr), m.Low, m.High) }

func ParseRetr(args []string) (Retr, error) {
	if len(args) != 2 {
		return Retr{}, errors.ErrMalformedMessage.Error()
	}
	return Retr{Low: args[0], High: args[1]}, nil
}

// Xfer is `XFER hash base64`.
type Xfer struct {
	Hash    string
	Payload string
}

func EncodeXfer(m Xfer) []byte { return Encode(string(VerbXfer), m.Hash, m.Payload) }

func ParseXfer(args []string) (Xfer, error) {
	if len(args) != 2 {
		return Xfer{}, errors.ErrMalformedMessage.Error()
	}
	return Xfer{Hash: args[0], Payload: args[1]}, nil
}

// --- TCP operator<->peer messages --------------------------------------

// CGet is `CGET hash`.
type CGet struct{ Hash string }

func EncodeCGet(m CGet) []byte { return Encode(string(VerbCGet), m.Hash) }

func ParseCGet(args []string) (CGet, error) {
	if len(args) != 1 {
		return CGet{}, errors.ErrMalformedMessage.Error()
	}
	return CGet{Hash: args[0]}, nil
}

// CPut is `CPUT base64`.
type CPut struct{ Payload string }

func EncodeCPut(m CPut) []byte { return Encode(string(VerbCPut), m.Payload) }

func ParseCPut(args []string) (CPut, error) {
	if len(args) != 1 {
		return CPut{}, errors.ErrMalformedMessage.Error()
	}
	return CPut{Payload: args[0]}, nil
}

// CShow is `CSHOW`, no arguments.
type CShow struct{}

func EncodeCShow() []byte { return Encode(string(VerbCShow)) }

func ParseCShow(args []string) (CShow, error) {
	if len(args) != 0 {
		return CShow{}, errors.ErrMalformedMessage.Error()
	}
	return CShow{}, nil
}

// CData is `CDATA base64`.
type CData struct{ Payload string }

func EncodeCData(m CData) []byte { return Encode(string(VerbCData), m.Payload) }

func ParseCData(args []string) (CData, error) {
	if len(args) != 1 {
		return CData{}, errors.ErrMalformedMessage.Error()
	}
	return CData{Payload: args[0]}, nil
}

// CError is `CERROR msg`.
type CError struct{ Msg string }

func EncodeCError(m CError) []byte { return Encode(string(VerbCError), m.Msg) }

func ParseCError(args []string) (CError, error) {
	if len(args) != 1 {
		return CError{}, errors.ErrMalformedMessage.Error()
	}
	return CError{Msg: args[0]}, nil
}

// COK is `COK hash`.
type COK struct{ Hash string }

func EncodeCOK(m COK) []byte { return Encode(string(VerbCOK), m.Hash) }

func ParseCOK(args []string) (COK, error) {
	if len(args) != 1 {
		return COK{}, errors.ErrMalformedMessage.Error()
	}
	return COK{Hash: args[0]}, nil
}

// CPeer is `CPEER hash addr`.
type CPeer struct {
	Hash string
	Addr string
}

func EncodeCPeer(m CPeer) []byte { return Encode(string(VerbCPeer), m.Hash, m.Addr) }

func ParseCPeer(args []string) (CPeer, error) {
	if len(args) != 2 {
		return CPeer{}, errors.ErrMalformedMessage.Error()
	}
	return CPeer{Hash: args[0], Addr: args[1]}, nil
}
