package mutagens

import "go/constant"

func constantInt(v int64) constant.Value { return constant.MakeInt64(v) }

func constantFloat(v float64) constant.Value { return constant.MakeFloat64(v) }
