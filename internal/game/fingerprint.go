package game

import (
	"encoding/json"
)

// CanonicalFingerprint 计算命令的规范化指纹。
// 命令先序列化再按键排序重排，相同内容的命令得到相同指纹。
func CanonicalFingerprint(cmd *Command) (string, error) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}

	// encoding/json 对map键排序输出
	canonical, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return string(canonical), nil
}
