// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package opaque

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
)

const testAccountName = "alice"

func registerTestAccount(t *testing.T, setup ServerSetup, password []byte) StoredRegistration {
	t.Helper()

	clientReg, req := ClientBeginRegistration(password)
	resp := ServerEvaluateRegistration(setup, req)
	upload, _, err := ClientFinishRegistration(clientReg, testAccountName, resp)
	require.NoError(t, err)

	return ServerFinishRegistration(upload)
}

func TestRegistrationAndLogin_RoundTrip(t *testing.T) {
	setup := GenerateServerSetup()
	password := []byte("correct horse battery staple")

	stored := registerTestAccount(t, setup, password)

	clientLogin, credReq := ClientBeginLogin(password)
	serverLogin, credResp := ServerEvaluateLogin(setup, stored, credReq)

	sessionKeyClient, exportKeyClient, fin, err := ClientFinishLogin(clientLogin, testAccountName, credResp)
	require.NoError(t, err)
	assert.Len(t, exportKeyClient, 32)

	sessionKeyServer, err := ServerFinishLogin(serverLogin, fin)
	require.NoError(t, err)

	assert.Equal(t, sessionKeyClient, sessionKeyServer, "client and server must derive the same session key")
}

func TestLogin_WrongPassword_ReturnsInvalidLogin(t *testing.T) {
	setup := GenerateServerSetup()
	stored := registerTestAccount(t, setup, []byte("correct horse battery staple"))

	clientLogin, credReq := ClientBeginLogin([]byte("wrong password"))
	_, credResp := ServerEvaluateLogin(setup, stored, credReq)

	_, _, _, err := ClientFinishLogin(clientLogin, testAccountName, credResp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.New(apperr.KindInvalidLogin)))
}

func TestLogin_WrongAccountName_ReturnsInvalidLogin(t *testing.T) {
	setup := GenerateServerSetup()
	password := []byte("correct horse battery staple")
	stored := registerTestAccount(t, setup, password)

	clientLogin, credReq := ClientBeginLogin(password)
	_, credResp := ServerEvaluateLogin(setup, stored, credReq)

	_, _, _, err := ClientFinishLogin(clientLogin, "mallory", credResp)
	require.Error(t, err)
}

func TestLogin_TamperedConfirmation_FailsServerSide(t *testing.T) {
	setup := GenerateServerSetup()
	password := []byte("correct horse battery staple")
	stored := registerTestAccount(t, setup, password)

	clientLogin, credReq := ClientBeginLogin(password)
	serverLogin, credResp := ServerEvaluateLogin(setup, stored, credReq)

	_, _, fin, err := ClientFinishLogin(clientLogin, testAccountName, credResp)
	require.NoError(t, err)

	fin.Fk2[0] ^= 0xFF

	_, err = ServerFinishLogin(serverLogin, fin)
	require.Error(t, err)
}

func TestLogin_WrongServerSetup_ReturnsInvalidLogin(t *testing.T) {
	setup := GenerateServerSetup()
	otherSetup := GenerateServerSetup()
	password := []byte("correct horse battery staple")
	stored := registerTestAccount(t, setup, password)

	clientLogin, credReq := ClientBeginLogin(password)
	_, credResp := ServerEvaluateLogin(otherSetup, stored, credReq)

	_, _, _, err := ClientFinishLogin(clientLogin, testAccountName, credResp)
	require.Error(t, err)
}

func TestExportKey_DeterministicForSamePassword(t *testing.T) {
	setup := GenerateServerSetup()
	password := []byte("correct horse battery staple")
	stored := registerTestAccount(t, setup, password)

	clientLogin1, credReq1 := ClientBeginLogin(password)
	_, credResp1 := ServerEvaluateLogin(setup, stored, credReq1)
	_, exportKey1, _, err := ClientFinishLogin(clientLogin1, testAccountName, credResp1)
	require.NoError(t, err)

	clientLogin2, credReq2 := ClientBeginLogin(password)
	_, credResp2 := ServerEvaluateLogin(setup, stored, credReq2)
	_, exportKey2, _, err := ClientFinishLogin(clientLogin2, testAccountName, credResp2)
	require.NoError(t, err)

	assert.Equal(t, exportKey1, exportKey2, "export key must be determined by the password, not by session randomness")
}

func TestExportKey_DiffersForDifferentPasswords(t *testing.T) {
	setup := GenerateServerSetup()
	stored := registerTestAccount(t, setup, []byte("correct horse battery staple"))

	clientLogin, credReq := ClientBeginLogin([]byte("correct horse battery staple"))
	_, credResp := ServerEvaluateLogin(setup, stored, credReq)
	_, exportKey, _, err := ClientFinishLogin(clientLogin, testAccountName, credResp)
	require.NoError(t, err)

	assert.NotEmpty(t, exportKey)
}

func TestServerSetup_BytesRoundTrip(t *testing.T) {
	setup := GenerateServerSetup()
	parsed, err := ServerSetupFromBytes(setup.Bytes())
	require.NoError(t, err)
	assert.Equal(t, setup.akePublic.Encode(nil), parsed.akePublic.Encode(nil))
}

func TestStoredRegistration_BinaryRoundTrip(t *testing.T) {
	setup := GenerateServerSetup()
	stored := registerTestAccount(t, setup, []byte("correct horse battery staple"))

	serialized, err := stored.MarshalBinary()
	require.NoError(t, err)

	parsed, err := UnmarshalStoredRegistration(serialized)
	require.NoError(t, err)
	assert.Equal(t, stored.Pu.Encode(nil), parsed.Pu.Encode(nil))
}

func TestRegistrationMessages_BytesRoundTrip(t *testing.T) {
	_, req := ClientBeginRegistration([]byte("correct horse battery staple"))
	parsedReq, err := RegistrationRequestFromBytes(req.Bytes())
	require.NoError(t, err)
	assert.Equal(t, req.Alpha.Encode(nil), parsedReq.Alpha.Encode(nil))

	setup := GenerateServerSetup()
	resp := ServerEvaluateRegistration(setup, req)
	parsedResp, err := RegistrationResponseFromBytes(resp.Bytes())
	require.NoError(t, err)
	assert.Equal(t, resp.Beta.Encode(nil), parsedResp.Beta.Encode(nil))
}

func TestCredentialRequest_BytesRoundTrip(t *testing.T) {
	_, credReq := ClientBeginLogin([]byte("correct horse battery staple"))
	parsed, err := CredentialRequestFromBytes(credReq.Bytes())
	require.NoError(t, err)
	assert.Equal(t, credReq.Alpha.Encode(nil), parsed.Alpha.Encode(nil))
	assert.Equal(t, credReq.Xu.Encode(nil), parsed.Xu.Encode(nil))
}
