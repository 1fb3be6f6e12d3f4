package bytecode

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ============================================================================
// 字节流读写
// ============================================================================

// ByteWriter 大端序字节写入器
type ByteWriter struct {
	buf bytes.Buffer
}

// NewByteWriter 创建新的写入器
func NewByteWriter() *ByteWriter {
	return &ByteWriter{}
}

// WriteU8 写入无符号字节
func (w *ByteWriter) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteI8 写入有符号字节
func (w *ByteWriter) WriteI8(v int8) {
	w.buf.WriteByte(uint8(v))
}

// WriteU16 写入无符号短整型
func (w *ByteWriter) WriteU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteI16 写入有符号短整型
func (w *ByteWriter) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

// WriteU32 写入无符号整型
func (w *ByteWriter) WriteU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteI32 写入有符号整型
func (w *ByteWriter) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteBytes 写入字节数组
func (w *ByteWriter) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Bytes 已写入的内容
func (w *ByteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Len 当前长度
func (w *ByteWriter) Len() int {
	return w.buf.Len()
}

// Reset 重置写入器
func (w *ByteWriter) Reset() {
	w.buf.Reset()
}

// ByteReader 大端序字节读取器，位置从代码起点计
type ByteReader struct {
	data []byte
	pos  int
}

// NewByteReader 创建读取器
func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data}
}

// Pos 当前读取位置
func (r *ByteReader) Pos() int { return r.pos }

// Remaining 剩余字节数
func (r *ByteReader) Remaining() int { return len(r.data) - r.pos }

func (r *ByteReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// Skip 跳过 n 个字节
func (r *ByteReader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *ByteReader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *ByteReader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

func (r *ByteReader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *ByteReader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *ByteReader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *ByteReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}
