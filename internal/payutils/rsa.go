package payutils

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"

	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/zeromicro/go-zero/core/logx"
)

// 平台固定使用 RSA + MD5 摘要, 屬外部既定规格不可更动
const keyAlgorithm = "RSA"

type KeyKind string

const (
	KeyKindPublic  KeyKind = "public"
	KeyKindPrivate KeyKind = "private"
)

// 金鑰依角色分型別, 防止验签誤用商户金鑰
type (
	MerchantPrivateKey string
	PlatformPublicKey  string
)

// SignRSA 以商户私鑰加签, 回傳 base64 签名
func SignRSA(content []byte, key MerchantPrivateKey) (string, error) {
	priv, err := parsePrivateKey(string(key))
	if err != nil {
		return "", errorx.New(responsex.KEY_ERROR, err.Error())
	}
	hashed := md5.Sum(content)
	sign, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.MD5, hashed[:])
	if err != nil {
		return "", errorx.New(responsex.KEY_ERROR, err.Error())
	}
	return base64.StdEncoding.EncodeToString(sign), nil
}

// VerifyRSA 以平台公鑰验签, 对不受信输入一律失败關闭, 不向外抛錯
func VerifyRSA(content []byte, sign string, key PlatformPublicKey) bool {
	pub, err := parsePublicKey(string(key))
	if err != nil {
		logx.Errorf("verify: platform public key unusable: %s", err.Error())
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(sign)
	if err != nil {
		return false
	}
	hashed := md5.Sum(content)
	return rsa.VerifyPKCS1v15(pub, crypto.MD5, hashed[:], raw) == nil
}

// ValidateKey 結構性检查: 能否解析為指定種類的金鑰
func ValidateKey(pemStr string, kind KeyKind) bool {
	switch kind {
	case KeyKindPrivate:
		_, err := parsePrivateKey(pemStr)
		return err == nil
	case KeyKindPublic:
		_, err := parsePublicKey(pemStr)
		return err == nil
	}
	return false
}

// GenerateKeyPair 产生 2048 位元金鑰对, 供開通配置使用, 非热路径
func GenerateKeyPair() (privPEM string, pubPEM string, err error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", err
	}
	privBlock := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}
	pubBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	}
	return string(pem.EncodeToMemory(privBlock)), string(pem.EncodeToMemory(pubBlock)), nil
}

func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the private key")
	}
	if priv, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return priv, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	priv, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not " + keyAlgorithm)
	}
	return priv, nil
}

func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the public key")
	}
	if keyAny, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if pub, ok := keyAny.(*rsa.PublicKey); ok {
			return pub, nil
		}
		return nil, errors.New("public key is not " + keyAlgorithm)
	}
	return x509.ParsePKCS1PublicKey(block.Bytes)
}
