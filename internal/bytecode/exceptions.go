package bytecode

// 指令可能抛出的异常类（内部形式类名）
const (
	ExcLinking                 = "java/lang/LinkageError"
	ExcClassCircularity        = "java/lang/ClassCircularityError"
	ExcClassFormat             = "java/lang/ClassFormatError"
	ExcExceptionInInitializer  = "java/lang/ExceptionInInitializerError"
	ExcIncompatibleClassChange = "java/lang/IncompatibleClassChangeError"
	ExcAbstractMethod          = "java/lang/AbstractMethodError"
	ExcIllegalAccess           = "java/lang/IllegalAccessError"
	ExcInstantiation           = "java/lang/InstantiationError"
	ExcNoSuchField             = "java/lang/NoSuchFieldError"
	ExcNoSuchMethod            = "java/lang/NoSuchMethodError"
	ExcNoClassDefFound         = "java/lang/NoClassDefFoundError"
	ExcUnsatisfiedLink         = "java/lang/UnsatisfiedLinkError"
	ExcVerify                  = "java/lang/VerifyError"
	ExcBootstrapMethod         = "java/lang/BootstrapMethodError"
	ExcNullPointer             = "java/lang/NullPointerException"
	ExcArrayIndexOutOfBounds   = "java/lang/ArrayIndexOutOfBoundsException"
	ExcArithmetic              = "java/lang/ArithmeticException"
	ExcNegativeArraySize       = "java/lang/NegativeArraySizeException"
	ExcClassCast               = "java/lang/ClassCastException"
	ExcIllegalMonitorState     = "java/lang/IllegalMonitorStateException"
	ExcArrayStore              = "java/lang/ArrayStoreException"
	ExcThrowable               = "java/lang/Throwable"
)

// 常用异常组合
var (
	excClassAndInterfaceResolution = []string{
		ExcNoClassDefFound, ExcClassFormat, ExcVerify, ExcIncompatibleClassChange,
		ExcClassCircularity, ExcIllegalAccess, ExcLinking,
	}
	excFieldAndMethodResolution = []string{
		ExcNoSuchField, ExcIllegalAccess, ExcNoSuchMethod,
	}
	excArrayAccess = []string{ExcNullPointer, ExcArrayIndexOutOfBounds}
)

// concatExceptions 拼接异常列表，返回新切片
func concatExceptions(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
