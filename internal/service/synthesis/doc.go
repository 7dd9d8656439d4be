// Package synthesis 封装外部合成进程。
//
// Backend 是唯一的能力接口：输入契约序列化为单个 JSON 参数交给进程，
// 进程在标准输出写出一个 JSON 结果对象。ProcessBackend 以子进程实现该接口，
// ParseResult 校验输出并提取合成 CSV 与评估指标。
package synthesis
