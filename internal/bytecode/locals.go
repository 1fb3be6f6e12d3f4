package bytecode

import (
	"fmt"
	"math"

	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/types"
)

// ============================================================================
// 局部变量指令
// ============================================================================

// LocalVariable xload/xstore/ret
//
// 短形式 iload_<n> 和长形式 iload n 是同一个逻辑指令，解码时保留原始形式。
// 下标超过 255 时使用 wide 前缀。
type LocalVariable struct {
	base
	index int
	wide  bool
}

// localForm 局部变量操作码的长形式和短形式起点
type localForm struct {
	long  Opcode
	short Opcode // 无短形式时为 0
	n     int    // 短形式隐含的下标，长形式为 -1
}

func localFormOf(op Opcode) localForm {
	switch {
	case op >= OpIload && op <= OpAload:
		return localForm{op, OpIload0 + (op-OpIload)*4, -1}
	case op >= OpIload0 && op <= OpAload3:
		k := (op - OpIload0) / 4
		return localForm{OpIload + k, OpIload0 + k*4, int(op-OpIload0) % 4}
	case op >= OpIstore && op <= OpAstore:
		return localForm{op, OpIstore0 + (op-OpIstore)*4, -1}
	case op >= OpIstore0 && op <= OpAstore3:
		k := (op - OpIstore0) / 4
		return localForm{OpIstore + k, OpIstore0 + k*4, int(op-OpIstore0) % 4}
	}
	return localForm{op, 0, -1}
}

var loadOps = map[types.Tag]Opcode{
	types.TBoolean: OpIload, types.TByte: OpIload, types.TChar: OpIload, types.TShort: OpIload,
	types.TInt: OpIload, types.TLong: OpLload, types.TFloat: OpFload, types.TDouble: OpDload,
	types.TObject: OpAload, types.TArray: OpAload,
}

var storeOps = map[types.Tag]Opcode{
	types.TBoolean: OpIstore, types.TByte: OpIstore, types.TChar: OpIstore, types.TShort: OpIstore,
	types.TInt: OpIstore, types.TLong: OpLstore, types.TFloat: OpFstore, types.TDouble: OpDstore,
	types.TObject: OpAstore, types.TArray: OpAstore, types.TAddress: OpAstore,
}

// NewLoad 按类型创建加载指令，选择最短编码
func NewLoad(t types.Type, index int) (*LocalVariable, error) {
	op, ok := loadOps[t.Tag()]
	if !ok {
		return nil, &ConstructionError{Name: "load", Reason: fmt.Sprintf("cannot load %s", t)}
	}
	return NewLocalVariable(op, index)
}

// NewStore 按类型创建存储指令，选择最短编码
func NewStore(t types.Type, index int) (*LocalVariable, error) {
	op, ok := storeOps[t.Tag()]
	if !ok {
		return nil, &ConstructionError{Name: "store", Reason: fmt.Sprintf("cannot store %s", t)}
	}
	return NewLocalVariable(op, index)
}

// NewRet 创建 ret
func NewRet(index int) (*LocalVariable, error) {
	return NewLocalVariable(OpRet, index)
}

// NewLocalVariable 创建局部变量指令
//
// op 为长形式时选择最短编码；op 为短形式时 index 必须等于其隐含下标。
func NewLocalVariable(op Opcode, index int) (*LocalVariable, error) {
	switch op.Family() {
	case FamLoad, FamStore, FamRet:
	default:
		return nil, constructionErrorf(op, "not a local variable opcode")
	}
	if f := localFormOf(op); f.n >= 0 && f.n != index {
		return nil, constructionErrorf(op, "index %d does not match short form", index)
	}
	lv := &LocalVariable{base: newBase(op)}
	if err := lv.SetIndex(index); err != nil {
		return nil, err
	}
	return lv, nil
}

// newLocalVariableOp 解码用，保留原始操作码
func newLocalVariableOp(op Opcode) *LocalVariable {
	lv := &LocalVariable{base: newBase(op)}
	if f := localFormOf(op); f.n >= 0 {
		lv.index = f.n
	}
	return lv
}

func (lv *LocalVariable) Index() int { return lv.index }

// IsWide 是否带 wide 前缀
func (lv *LocalVariable) IsWide() bool { return lv.wide }

// SetIndex 修改下标并重新选择最短编码
func (lv *LocalVariable) SetIndex(index int) error {
	if index < 0 || index > math.MaxUint16 {
		return constructionErrorf(lv.op, "local variable index %d outside 0..65535", index)
	}
	f := localFormOf(lv.op)
	lv.index = index
	lv.wide = index > math.MaxUint8
	switch {
	case f.short != 0 && index <= 3:
		lv.op = f.short + Opcode(index)
		lv.length = 1
	case lv.wide:
		lv.op = f.long
		lv.length = 4
	default:
		lv.op = f.long
		lv.length = 2
	}
	return nil
}

// IsStore 是否为存储指令
func (lv *LocalVariable) IsStore() bool {
	return lv.op.Family() == FamStore
}

// Type ret 为返回地址，其余按助记符前缀
func (lv *LocalVariable) Type(constpool.Accessor) (types.Type, error) {
	if lv.op == OpRet {
		return types.NewReturnAddressType(0), nil
	}
	return typeForPrefix(lv.op), nil
}

func (lv *LocalVariable) isShort() bool {
	return localFormOf(lv.op).n >= 0
}

func (lv *LocalVariable) encode(w *ByteWriter, _ int) error {
	switch {
	case lv.isShort():
		w.WriteU8(uint8(lv.op))
	case lv.wide:
		w.WriteU8(uint8(OpWide))
		w.WriteU8(uint8(lv.op))
		w.WriteU16(uint16(lv.index))
	default:
		w.WriteU8(uint8(lv.op))
		w.WriteU8(uint8(lv.index))
	}
	return nil
}

func (lv *LocalVariable) decode(r *ByteReader, wide bool) error {
	if lv.isShort() {
		return nil
	}
	lv.wide = wide
	if wide {
		v, err := r.ReadU16()
		lv.index = int(v)
		lv.length = 4
		return err
	}
	v, err := r.ReadU8()
	lv.index = int(v)
	return err
}

func (lv *LocalVariable) String() string {
	switch {
	case lv.isShort():
		return lv.op.String()
	case lv.wide:
		return fmt.Sprintf("wide %s %d", lv.op, lv.index)
	}
	return fmt.Sprintf("%s %d", lv.op, lv.index)
}

func (lv *LocalVariable) Copy() Instruction {
	c := *lv
	return &c
}

// ============================================================================
// iinc
// ============================================================================

// Iinc 局部变量自增，下标超过 255 或增量超出 int8 时使用 wide 形式
type Iinc struct {
	base
	index     int
	increment int
	wide      bool
}

// NewIinc 创建 iinc
func NewIinc(index, increment int) (*Iinc, error) {
	if index < 0 || index > math.MaxUint16 {
		return nil, constructionErrorf(OpIinc, "local variable index %d outside 0..65535", index)
	}
	if increment < math.MinInt16 || increment > math.MaxInt16 {
		return nil, constructionErrorf(OpIinc, "increment %d does not fit in a short", increment)
	}
	i := &Iinc{base: newBase(OpIinc), index: index, increment: increment}
	i.setWide(index > math.MaxUint8 || increment < math.MinInt8 || increment > math.MaxInt8)
	return i, nil
}

func (i *Iinc) setWide(wide bool) {
	i.wide = wide
	if wide {
		i.length = 6
	} else {
		i.length = 3
	}
}

func (i *Iinc) Index() int { return i.index }

// Increment 增量
func (i *Iinc) Increment() int { return i.increment }

// IsWide 是否带 wide 前缀
func (i *Iinc) IsWide() bool { return i.wide }

func (i *Iinc) SetIndex(index int) error {
	n, err := NewIinc(index, i.increment)
	if err != nil {
		return err
	}
	*i = *n
	return nil
}

// SetIncrement 修改增量，必要时切换为 wide 形式
func (i *Iinc) SetIncrement(increment int) error {
	n, err := NewIinc(i.index, increment)
	if err != nil {
		return err
	}
	*i = *n
	return nil
}

func (i *Iinc) Type(constpool.Accessor) (types.Type, error) {
	return types.Int, nil
}

func (i *Iinc) encode(w *ByteWriter, _ int) error {
	if i.wide {
		w.WriteU8(uint8(OpWide))
		w.WriteU8(uint8(OpIinc))
		w.WriteU16(uint16(i.index))
		w.WriteI16(int16(i.increment))
		return nil
	}
	w.WriteU8(uint8(OpIinc))
	w.WriteU8(uint8(i.index))
	w.WriteI8(int8(i.increment))
	return nil
}

func (i *Iinc) decode(r *ByteReader, wide bool) error {
	i.setWide(wide)
	if wide {
		idx, err := r.ReadU16()
		if err != nil {
			return err
		}
		inc, err := r.ReadI16()
		i.index, i.increment = int(idx), int(inc)
		return err
	}
	idx, err := r.ReadU8()
	if err != nil {
		return err
	}
	inc, err := r.ReadI8()
	i.index, i.increment = int(idx), int(inc)
	return err
}

func (i *Iinc) String() string {
	if i.wide {
		return fmt.Sprintf("wide iinc %d %d", i.index, i.increment)
	}
	return fmt.Sprintf("iinc %d %d", i.index, i.increment)
}

func (i *Iinc) Copy() Instruction {
	c := *i
	return &c
}
