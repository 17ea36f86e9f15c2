package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/petpal-dev/petpal/config"
)

const wechatSessionURL = "https://api.weixin.qq.com/sns/jscode2session"

// WechatSession is the identity WeChat returns for a mini-program login code.
type WechatSession struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

var wechatHTTP = &http.Client{Timeout: 5 * time.Second}

// WechatCode2Session exchanges a wx.login code for the user's OpenID.
func WechatCode2Session(ctx context.Context, code string) (*WechatSession, error) {
	cfg := config.Get()
	q := url.Values{}
	q.Set("appid", cfg.WechatAppID)
	q.Set("secret", cfg.WechatAppSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wechatSessionURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := wechatHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wechat code2session request: %w", err)
	}
	defer resp.Body.Close()

	var session WechatSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("wechat code2session decode: %w", err)
	}
	if session.ErrCode != 0 {
		return nil, fmt.Errorf("wechat code2session failed: %d %s", session.ErrCode, session.ErrMsg)
	}
	if session.OpenID == "" {
		return nil, fmt.Errorf("wechat code2session returned empty openid")
	}
	return &session, nil
}
